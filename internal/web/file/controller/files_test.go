package controller

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/file/model"
	"github.com/Laisky/files-manager/internal/web/file/service"
	"github.com/Laisky/files-manager/library/log"
)

type memMeta struct {
	files map[primitive.ObjectID]*model.File
	order []primitive.ObjectID
}

func newMemMeta() *memMeta {
	return &memMeta{files: map[primitive.ObjectID]*model.File{}}
}

func (m *memMeta) Insert(_ context.Context, f *model.File) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	cp := *f
	m.files[f.ID] = &cp
	m.order = append(m.order, f.ID)
	return nil
}

func (m *memMeta) Get(_ context.Context, id primitive.ObjectID) (*model.File, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, errors.WithStack(model.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (m *memMeta) GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*model.File, error) {
	f, err := m.Get(ctx, id)
	if err != nil || f.UserID != owner {
		return nil, errors.WithStack(model.ErrNotFound)
	}
	return f, nil
}

func (m *memMeta) List(_ context.Context, owner primitive.ObjectID,
	parent model.ParentRef, page int) ([]*model.File, error) {
	matched := []*model.File{}
	for _, id := range m.order {
		f := m.files[id]
		if f.UserID == owner && f.ParentID == parent {
			cp := *f
			matched = append(matched, &cp)
		}
	}

	start := page * model.ListPageSize
	if start >= len(matched) {
		return []*model.File{}, nil
	}
	end := start + model.ListPageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (m *memMeta) SetPublic(_ context.Context, id, owner primitive.ObjectID,
	public bool) (*model.File, error) {
	f, ok := m.files[id]
	if !ok || f.UserID != owner {
		return nil, errors.WithStack(model.ErrNotFound)
	}
	f.IsPublic = public
	cp := *f
	return &cp, nil
}

type memBlobs struct {
	data map[string][]byte
	seq  int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (b *memBlobs) Save(_ context.Context, data []byte) (string, error) {
	b.seq++
	path := fmt.Sprintf("/blobs/%d", b.seq)
	b.data[path] = data
	return path, nil
}

func (b *memBlobs) Read(path string) ([]byte, error) {
	data, ok := b.data[path]
	if !ok {
		return nil, errors.Errorf("no blob at %q", path)
	}
	return data, nil
}

func (b *memBlobs) Exists(path string) bool {
	_, ok := b.data[path]
	return ok
}

type noopQueue struct{}

func (noopQueue) Enqueue(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

// memResolver maps opaque tokens to user id hex strings.
type memResolver map[string]string

func (m memResolver) Resolve(_ context.Context, token string) (string, error) {
	uid, ok := m[token]
	if !ok {
		return "", errors.New("token not found")
	}
	return uid, nil
}

type filesFixture struct {
	router *gin.Engine
	tokens memResolver
}

func newFilesFixture() *filesFixture {
	gin.SetMode(gin.TestMode)

	tokens := memResolver{}
	engine := service.New(log.Logger, newMemMeta(), newMemBlobs(), noopQueue{})
	ctl := New(log.Logger, engine, tokens)

	router := gin.New()
	router.POST("/files", ctl.Upload)
	router.GET("/files", ctl.Index)
	router.GET("/files/:id", ctl.Show)
	router.PUT("/files/:id/publish", ctl.Publish)
	router.PUT("/files/:id/unpublish", ctl.Unpublish)
	router.GET("/files/:id/data", ctl.Data)

	return &filesFixture{router: router, tokens: tokens}
}

// login registers a fresh user session and returns its token.
func (f *filesFixture) login() string {
	token := fmt.Sprintf("token-%d", len(f.tokens)+1)
	f.tokens[token] = primitive.NewObjectID().Hex()
	return token
}

func (f *filesFixture) do(t *testing.T, method, path, token string,
	body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("X-Token", token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeFile(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// TestFiles_UploadListPublishFetch walks the whole lifecycle: a folder, a
// file inside it, a listing, publication, and an anonymous content fetch.
func TestFiles_UploadListPublishFetch(t *testing.T) {
	fix := newFilesFixture()
	token := fix.login()

	w := fix.do(t, http.MethodPost, "/files", token,
		gin.H{"name": "docs", "type": "folder"})
	require.Equal(t, http.StatusCreated, w.Code)
	folder := decodeFile(t, w)
	require.Equal(t, "docs", folder["name"])
	require.Equal(t, float64(0), folder["parentId"])
	require.Equal(t, false, folder["isPublic"])
	folderID := folder["id"].(string)

	w = fix.do(t, http.MethodPost, "/files", token,
		gin.H{"name": "note.txt", "type": "file", "parentId": folderID, "data": b64("hi")})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeFile(t, w)
	require.Equal(t, folderID, note["parentId"])
	// localPath never leaks into responses
	require.NotContains(t, note, "localPath")
	noteID := note["id"].(string)

	w = fix.do(t, http.MethodGet, "/files/"+noteID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = fix.do(t, http.MethodGet, "/files?parentId="+folderID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing, 1)
	require.Equal(t, "note.txt", listing[0]["name"])

	// private content is hidden from anonymous callers
	w = fix.do(t, http.MethodGet, "/files/"+noteID+"/data", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = fix.do(t, http.MethodPut, "/files/"+noteID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decodeFile(t, w)["isPublic"])

	w = fix.do(t, http.MethodGet, "/files/"+noteID+"/data", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hi", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = fix.do(t, http.MethodPut, "/files/"+noteID+"/unpublish", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decodeFile(t, w)["isPublic"])

	w = fix.do(t, http.MethodGet, "/files/"+noteID+"/data", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFiles_UploadValidationErrors(t *testing.T) {
	fix := newFilesFixture()
	token := fix.login()

	cases := []struct {
		name string
		body gin.H
		want string
	}{
		{"missing name", gin.H{"type": "folder"}, "Missing name"},
		{"missing type", gin.H{"name": "a"}, "Missing type"},
		{"bad type", gin.H{"name": "a", "type": "dir"}, "Missing type"},
		{"missing data", gin.H{"name": "a", "type": "file"}, "Missing data"},
		{"bad base64", gin.H{"name": "a", "type": "file", "data": "%%%"}, "Missing data"},
		{"unknown parent", gin.H{"name": "a", "type": "folder",
			"parentId": primitive.NewObjectID().Hex()}, "Parent not found"},
		{"unparsable parent", gin.H{"name": "a", "type": "folder",
			"parentId": "nope"}, "Parent not found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := fix.do(t, http.MethodPost, "/files", token, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Equal(t, tc.want, decodeFile(t, w)["error"])
		})
	}
}

func TestFiles_ParentNotFolder(t *testing.T) {
	fix := newFilesFixture()
	token := fix.login()

	w := fix.do(t, http.MethodPost, "/files", token,
		gin.H{"name": "note.txt", "type": "file", "data": b64("hi")})
	require.Equal(t, http.StatusCreated, w.Code)
	noteID := decodeFile(t, w)["id"].(string)

	w = fix.do(t, http.MethodPost, "/files", token,
		gin.H{"name": "sub", "type": "folder", "parentId": noteID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Parent is not a folder", decodeFile(t, w)["error"])
}

func TestFiles_NumericZeroParent(t *testing.T) {
	fix := newFilesFixture()
	token := fix.login()

	// the wire contract allows parentId as the number 0
	w := fix.do(t, http.MethodPost, "/files", token,
		gin.H{"name": "docs", "type": "folder", "parentId": 0})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, float64(0), decodeFile(t, w)["parentId"])
}

func TestFiles_Unauthorized(t *testing.T) {
	fix := newFilesFixture()

	for _, token := range []string{"", "bogus"} {
		w := fix.do(t, http.MethodPost, "/files", token, gin.H{"name": "a", "type": "folder"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Unauthorized", decodeFile(t, w)["error"])

		w = fix.do(t, http.MethodGet, "/files", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = fix.do(t, http.MethodGet, "/files/abc", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = fix.do(t, http.MethodPut, "/files/abc/publish", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestFiles_OwnershipConflatedToNotFound(t *testing.T) {
	fix := newFilesFixture()
	owner := fix.login()
	stranger := fix.login()

	w := fix.do(t, http.MethodPost, "/files", owner,
		gin.H{"name": "note.txt", "type": "file", "data": b64("hi")})
	require.Equal(t, http.StatusCreated, w.Code)
	noteID := decodeFile(t, w)["id"].(string)

	w = fix.do(t, http.MethodGet, "/files/"+noteID, stranger, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Not found", decodeFile(t, w)["error"])

	w = fix.do(t, http.MethodPut, "/files/"+noteID+"/publish", stranger, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// a private record is invisible even to authenticated non-owners
	w = fix.do(t, http.MethodGet, "/files/"+noteID+"/data", stranger, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFiles_FolderData(t *testing.T) {
	fix := newFilesFixture()
	token := fix.login()

	w := fix.do(t, http.MethodPost, "/files", token, gin.H{"name": "docs", "type": "folder"})
	require.Equal(t, http.StatusCreated, w.Code)
	folderID := decodeFile(t, w)["id"].(string)

	w = fix.do(t, http.MethodGet, "/files/"+folderID+"/data", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "A folder doesn't have content", decodeFile(t, w)["error"])
}

func TestFiles_IndexUnparsableParentYieldsEmptyList(t *testing.T) {
	fix := newFilesFixture()
	token := fix.login()

	w := fix.do(t, http.MethodPost, "/files", token, gin.H{"name": "docs", "type": "folder"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = fix.do(t, http.MethodGet, "/files?parentId=garbage", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())
}

func TestFiles_IndexBadPageDefaultsToZero(t *testing.T) {
	fix := newFilesFixture()
	token := fix.login()

	w := fix.do(t, http.MethodPost, "/files", token, gin.H{"name": "docs", "type": "folder"})
	require.Equal(t, http.StatusCreated, w.Code)

	for _, page := range []string{"nope", "-3", ""} {
		w = fix.do(t, http.MethodGet, "/files?page="+page, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var listing []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
		require.Len(t, listing, 1)
	}
}

func TestRawParentID(t *testing.T) {
	require.Equal(t, "", rawParentID(nil))
	require.Equal(t, "0", rawParentID(float64(0)))
	require.Equal(t, "abc", rawParentID("abc"))
	require.Equal(t, "", rawParentID(true))
}
