package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docconv/internal/config"
	"docconv/internal/convert"
	"docconv/internal/domain"
	"docconv/internal/infra/chrome"
	"docconv/internal/infra/workspace"
)

type fakeConverter struct {
	calls   int
	lastReq convert.Request
	sawDir  string
	result  *convert.Result
	err     error
}

func (f *fakeConverter) Supports(t domain.ConversionType) bool {
	return t != "pdf-to-xlsx" && t != "bogus"
}

func (f *fakeConverter) Catalog() []convert.CatalogEntry {
	return []convert.CatalogEntry{{Type: "pdf-to-text", Output: "text"}, {Type: "merge-pdfs", Batch: true, Output: "pdf"}}
}

func (f *fakeConverter) Convert(_ context.Context, ws *workspace.Workspace, req convert.Request) (*convert.Result, error) {
	f.calls++
	f.lastReq = req
	f.sawDir = ws.Dir()
	if err := os.WriteFile(ws.Reserve("out.bin"), []byte("scratch"), 0o600); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeText struct {
	text string
	err  error
}

func (f fakeText) ExtractText(context.Context, string) (string, error) { return f.text, f.err }

func testCfg(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.UploadDir = t.TempDir()
	cfg.Limits.MaxBatchFiles = 3
	return cfg
}

type part struct {
	field, filename string
	data            []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func assertUploadDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp directories must be removed after the request")
}

func convertApp(conv Converter, cfg config.Config) *fiber.App {
	app := fiber.New()
	h := NewConvertHandler(conv, cfg)
	app.Post("/api/convert", h.HandleConvert)
	app.Get("/api/conversions", h.HandleConversions)
	return app
}

func TestHandleConvert_ValidationBeforeUpload(t *testing.T) {
	cfg := testCfg(t)
	conv := &fakeConverter{}
	app := convertApp(conv, cfg)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing type", map[string]string{}},
		{"unsupported type", map[string]string{"conversion_type": "pdf-to-xlsx"}},
		{"quality not a number", map[string]string{"conversion_type": "pdf-compress", "compression_level": "high"}},
		{"quality out of range", map[string]string{"conversion_type": "pdf-compress", "compression_level": "0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := multipartRequest(t, "/api/convert", tc.fields, part{"file", "a.pdf", []byte("%PDF-1.4")})
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Zero(t, conv.calls)
	assertUploadDirEmpty(t, cfg.Storage.UploadDir)
}

func TestHandleConvert_FileResponse(t *testing.T) {
	cfg := testCfg(t)
	conv := &fakeConverter{result: &convert.Result{Body: []byte("%PDF-out"), Filename: "a-compressed.pdf", ContentType: "application/pdf"}}
	app := convertApp(conv, cfg)

	req := multipartRequest(t, "/api/convert",
		map[string]string{"conversion_type": "pdf-compress", "compression_level": "40"},
		part{"file", "../../a.pdf", []byte("%PDF-1.4")})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-out", string(body))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "a-compressed.pdf")

	assert.Equal(t, 40, conv.lastReq.Quality)
	require.Len(t, conv.lastReq.Inputs, 1)
	assert.Equal(t, "a.pdf", workspace.SafeName(conv.lastReq.Inputs[0].Name))
	assert.NoDirExists(t, conv.sawDir)
	assertUploadDirEmpty(t, cfg.Storage.UploadDir)
}

func TestHandleConvert_DefaultQualityAndText(t *testing.T) {
	cfg := testCfg(t)
	conv := &fakeConverter{result: &convert.Result{Text: "hello", IsText: true}}
	app := convertApp(conv, cfg)

	req := multipartRequest(t, "/api/convert", map[string]string{"conversion_type": "pdf-to-text"},
		part{"file", "a.pdf", []byte("%PDF-1.4")})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "hello", out["text"])
	assert.Equal(t, domain.DefaultQuality, conv.lastReq.Quality)
}

func TestHandleConvert_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"missing password", domain.ErrMissingPassword, fiber.StatusBadRequest},
		{"wrong password", domain.ErrInvalidPassword, fiber.StatusBadRequest},
		{"bad ranges", domain.ErrInvalidSplitRanges, fiber.StatusBadRequest},
		{"too large", domain.ErrOutputTooLarge, fiber.StatusRequestEntityTooLarge},
		{"timeout", context.DeadlineExceeded, fiber.StatusRequestTimeout},
		{"collaborator", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testCfg(t)
			app := convertApp(&fakeConverter{err: tc.err}, cfg)

			req := multipartRequest(t, "/api/convert",
				map[string]string{"conversion_type": "pdf-unlock", "password": "x"},
				part{"file", "a.pdf", []byte("%PDF-1.4")})
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
			assertUploadDirEmpty(t, cfg.Storage.UploadDir)
		})
	}
}

func TestHandleConvert_BatchUploads(t *testing.T) {
	cfg := testCfg(t)
	conv := &fakeConverter{result: &convert.Result{Body: []byte("zip"), Filename: "merged.pdf", ContentType: "application/pdf"}}
	app := convertApp(conv, cfg)

	req := multipartRequest(t, "/api/convert", map[string]string{"conversion_type": "merge-pdfs"},
		part{"files", "b.pdf", []byte("%PDF")}, part{"files", "a.pdf", []byte("%PDF")})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, conv.lastReq.Inputs, 2)
	assert.Equal(t, "b.pdf", conv.lastReq.Inputs[0].Name)
	assert.Equal(t, "a.pdf", conv.lastReq.Inputs[1].Name)

	many := []part{}
	for i := 0; i < cfg.Limits.MaxBatchFiles+1; i++ {
		many = append(many, part{"files", "x.pdf", []byte("%PDF")})
	}
	req = multipartRequest(t, "/api/convert", map[string]string{"conversion_type": "merge-pdfs"}, many...)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assertUploadDirEmpty(t, cfg.Storage.UploadDir)
}

func TestHandleConversions(t *testing.T) {
	app := convertApp(&fakeConverter{}, testCfg(t))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/conversions", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Conversions []convert.CatalogEntry `json:"conversions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Conversions, 2)
	assert.True(t, out.Conversions[1].Batch)
}

func TestHandleFlashcards(t *testing.T) {
	text := "Go is a statically typed compiled programming language. " +
		"It was designed at Google in two thousand seven."
	cfg := testCfg(t)

	app := fiber.New()
	app.Post("/api/flashcards", NewFlashcardHandler(fakeText{text: text}, cfg).HandleFlashcards)
	empty := fiber.New()
	empty.Post("/api/flashcards", NewFlashcardHandler(fakeText{text: "  \n"}, cfg).HandleFlashcards)

	resp, err := app.Test(multipartRequest(t, "/api/flashcards", nil, part{"file", "notes.txt", []byte("plain text")}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(multipartRequest(t, "/api/flashcards", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = empty.Test(multipartRequest(t, "/api/flashcards", nil, part{"file", "scan.pdf", []byte("%PDF-1.4")}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// sniffed PDF without the extension
	resp, err = app.Test(multipartRequest(t, "/api/flashcards", nil, part{"file", "upload", []byte("%PDF-1.4 body")}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Flashcards []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		} `json:"flashcards"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Flashcards)
	assert.Equal(t, "What is Go?", out.Flashcards[0].Question)

	assertUploadDirEmpty(t, cfg.Storage.UploadDir)
}

func TestHandleRoot(t *testing.T) {
	app := fiber.New()
	app.Get("/", HandleRoot)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "OK", out["status"])
	assert.Equal(t, "Smart Study Tool API is running", out["message"])
}

type fakeStats struct {
	stats chrome.Stats
	err   error
}

func (f fakeStats) Stats() (chrome.Stats, error) { return f.stats, f.err }

func TestHandleChromeStats(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", HandleChromeStats(fakeStats{stats: chrome.Stats{Enabled: true, Capacity: 2, Idle: 1, InUse: 1}}))
	app.Get("/err", HandleChromeStats(fakeStats{err: errors.New("no chrome")}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var s chrome.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, 2, s.Capacity)
	assert.Equal(t, 1, s.InUse)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/err", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSentence(t *testing.T) {
	assert.Equal(t, "Password is required", sentence(domain.ErrMissingPassword.Error()))
	assert.Equal(t, "", sentence(""))
}
