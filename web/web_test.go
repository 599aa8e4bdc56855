package web

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miniblog/miniblog/database"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t         *testing.T
	base      string
	http      *http.Client
	uploadDir string
	// lang is sent as Accept-Language when set
	lang string
}

// newTestClient starts the full router on a fresh database and upload folder.
// Redirects are not followed so tests can assert on them.
func newTestClient(t *testing.T) *testClient {
	t.Helper()
	require.NoError(t, database.InitSQLite(filepath.Join(t.TempDir(), "blog.db")))
	t.Cleanup(func() { _ = database.CloseDB() })

	uploadDir := filepath.Join(t.TempDir(), "imgs")
	s := newServer(uploadDir)
	engine, err := s.initRouter()
	require.NoError(t, err)

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:    t,
		base: ts.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		uploadDir: uploadDir,
	}
}

func (c *testClient) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *testClient) get(path string) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *testClient) postForm(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// postMultipart sends fields plus, when fileName is set, a "file" part.
func (c *testClient) postMultipart(path string, fields map[string]string, fileName string, content []byte) (*http.Response, string) {
	c.t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(c.t, err)
		_, err = part.Write(content)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, c.base+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *testClient) register(name, email, password string) {
	c.t.Helper()
	resp, _ := c.postForm("/register", url.Values{"name": {name}, "email": {email}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
}

func (c *testClient) login(email, password string) {
	c.t.Helper()
	resp, _ := c.postForm("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
}

func (c *testClient) loggedIn() {
	c.t.Helper()
	c.register("alice", "e@x.com", "pw1")
	c.login("e@x.com", "pw1")
}

func postFields(title string) map[string]string {
	return map[string]string{"title": title, "author": "Alice", "content": "Body text"}
}

func TestRegisterThenLogin(t *testing.T) {
	c := newTestClient(t)

	resp, _ := c.postForm("/register", url.Values{"name": {"alice"}, "email": {"e@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, body := c.postForm("/login", url.Values{"email": {"e@x.com"}, "password": {"pw2"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Wrong email or password.")
	assert.Empty(t, resp.Header.Values("Set-Cookie"))

	resp, _ = c.get("/member")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp, _ = c.postForm("/login", url.Values{"email": {"e@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/member", resp.Header.Get("Location"))
	assert.Len(t, resp.Header.Values("Set-Cookie"), 1)

	resp, body = c.get("/member")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome Back!")
	assert.Contains(t, body, "alice")

	// the flash is shown once
	_, body = c.get("/member")
	assert.NotContains(t, body, "Welcome Back!")
}

func TestLoginRejectsBlankFields(t *testing.T) {
	c := newTestClient(t)
	c.register("alice", "e@x.com", "pw1")

	for _, form := range []url.Values{
		{"email": {"e@x.com"}},
		{"email": {"  "}, "password": {"pw1"}},
		{},
	} {
		resp, body := c.postForm("/login", form)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, form.Encode())
		assert.Contains(t, body, "Email and password are required.")
		assert.Empty(t, resp.Header.Values("Set-Cookie"))
	}

	resp, _ := c.get("/member")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestRegisterRejectsMissingField(t *testing.T) {
	c := newTestClient(t)

	resp, body := c.postForm("/register", url.Values{"name": {"alice"}, "email": {"e@x.com"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `value="alice"`)
}

func TestLogout(t *testing.T) {
	c := newTestClient(t)
	c.loggedIn()

	resp, _ := c.get("/logout")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = c.get("/member")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	c := newTestClient(t)

	for _, path := range []string{"/member", "/post/create", "/post/edit/1", "/post/delete/1"} {
		resp, _ := c.get(path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp, _ := c.postMultipart("/post/create", postFields("Hello"), "img.png", []byte("png"))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_, err := os.Stat(filepath.Join(c.uploadDir, "img.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreatePost(t *testing.T) {
	c := newTestClient(t)
	c.loggedIn()

	resp, _ := c.postMultipart("/post/create", postFields("Hello"), "img.png", []byte("png-bytes"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, body := c.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "/static/imgs/img.png")

	data, err := os.ReadFile(filepath.Join(c.uploadDir, "img.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	resp, body = c.get("/static/imgs/img.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", body)
}

func TestCreateRejectsBadUpload(t *testing.T) {
	c := newTestClient(t)
	c.loggedIn()

	resp, body := c.postMultipart("/post/create", postFields("Hello"), "img.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "File upload error: file type not allowed.")
	_, err := os.Stat(filepath.Join(c.uploadDir, "img.exe"))
	assert.True(t, os.IsNotExist(err))

	resp, _ = c.postMultipart("/post/create", postFields("Hello"), "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// blank fields are rejected before the image is written
	resp, _ = c.postMultipart("/post/create", map[string]string{"title": "Hello"}, "img.png", []byte("png"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_, err = os.Stat(filepath.Join(c.uploadDir, "img.png"))
	assert.True(t, os.IsNotExist(err))

	_, body = c.get("/")
	assert.Contains(t, body, "No posts yet.")
}

func TestCreateSanitizesFileName(t *testing.T) {
	c := newTestClient(t)
	c.loggedIn()

	resp, _ := c.postMultipart("/post/create", postFields("Hello"), "../../my photo.png", []byte("png"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err := os.Stat(filepath.Join(c.uploadDir, "my_photo.png"))
	assert.NoError(t, err)
	_, body := c.get("/post/detail/1")
	assert.Contains(t, body, "/static/imgs/my_photo.png")
}

func TestEditKeepsImageWithoutFile(t *testing.T) {
	c := newTestClient(t)
	c.loggedIn()

	resp, _ := c.postMultipart("/post/create", postFields("Hello"), "img.png", []byte("png"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := c.get("/post/edit/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Hello"`)

	fields := postFields("Updated")
	fields["old_image"] = "other.png"
	resp, _ = c.postMultipart("/post/edit/1", fields, "", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/member", resp.Header.Get("Location"))

	_, body = c.get("/post/detail/1")
	assert.Contains(t, body, "Updated")
	assert.Contains(t, body, "/static/imgs/img.png")

	resp, _ = c.postMultipart("/post/edit/1", postFields("Updated"), "new.gif", []byte("gif"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = c.get("/post/detail/1")
	assert.Contains(t, body, "/static/imgs/new.gif")

	resp, _ = c.postMultipart("/post/edit/1", postFields("Updated"), "new.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.postMultipart("/post/edit/9", postFields("Updated"), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletePost(t *testing.T) {
	c := newTestClient(t)
	c.loggedIn()

	resp, _ := c.postMultipart("/post/create", postFields("Hello"), "img.png", []byte("png"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = c.get("/post/detail/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.get("/post/delete/1")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/member", resp.Header.Get("Location"))

	resp, body := c.get("/post/detail/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "This post does not exist.")

	resp, _ = c.get("/post/delete/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDetailUnknownPost(t *testing.T) {
	c := newTestClient(t)

	for _, path := range []string{"/post/detail/1", "/post/detail/abc", "/post/detail/-3"} {
		resp, _ := c.get(path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp, _ := c.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGermanLocale(t *testing.T) {
	c := newTestClient(t)
	c.lang = "de-DE"

	resp, body := c.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Noch keine Beiträge.")
	assert.NotContains(t, body, "No posts yet.")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	c.loggedIn()
	resp, body = c.postMultipart("/post/create", postFields("Hallo"), "img.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Fehler beim Hochladen: Dateityp nicht erlaubt.")
	assert.NotContains(t, body, "file type not allowed")

	resp, body = c.postForm("/login", url.Values{"email": {"e@x.com"}, "password": {"falsch"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "E-Mail oder Passwort ist falsch.")
}

func TestTranslationsCoverSameKeys(t *testing.T) {
	keys := func(name string) []string {
		data, err := i18nFS.ReadFile("translation/" + name)
		require.NoError(t, err)
		messages := map[string]string{}
		require.NoError(t, toml.Unmarshal(data, &messages))
		out := make([]string, 0, len(messages))
		for k := range messages {
			out = append(out, k)
		}
		return out
	}
	en := keys("translate.en_US.toml")
	assert.Contains(t, en, "errors.upload.notAllowed")
	assert.ElementsMatch(t, en, keys("translate.de_DE.toml"))
}
