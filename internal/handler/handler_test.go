package handler_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/terrydolan/catmon-img-tag/internal/config"
	"github.com/terrydolan/catmon-img-tag/internal/handler"
	"github.com/terrydolan/catmon-img-tag/internal/storage/storagetest"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			SourcePrefix:        "incoming/",
			BooPrefix:           "boo_images/",
			SimbaPrefix:         "simba_images/",
			UnclearPrefix:       "unclear_images/",
			AutoDiscardPrefix:   "auto_discard_images/",
			BrightnessThreshold: 25.0,
			ListLimit:           100,
		},
	}
}

func setupRouter(t *testing.T, store *storagetest.Fake) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := handler.NewHandler(store, testConfig(), zap.NewNop())
	router.GET("/health", h.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.GET("/sessions/:id/image", h.GetImage)
		api.POST("/sessions/:id/tag", h.TagImage)
		api.POST("/sessions/:id/undo", h.UndoTag)
		api.POST("/sessions/:id/resume", h.ResumeSession)
	}
	return router
}

func brightPNGBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / 15), 200, 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

type sessionPayload struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Image     *struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"image"`
	Error string `json:"error"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body string) (*httptest.ResponseRecorder, sessionPayload) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var payload sessionPayload
	_ = json.Unmarshal(w.Body.Bytes(), &payload)
	return w, payload
}

func TestTaggingFlow(t *testing.T) {
	store := storagetest.NewFake()
	store.Put("incoming/cat.png", brightPNGBytes(t), time.Now())
	router := setupRouter(t, store)

	w, created := doJSON(t, router, http.MethodPost, "/api/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, want 201", w.Code)
	}
	if created.State != "presenting" || created.Image == nil {
		t.Fatalf("created session = %+v, want a presented image", created)
	}
	if created.Image.Key != "incoming/cat.png" {
		t.Fatalf("presented key = %q", created.Image.Key)
	}

	// Image bytes are served with a content type.
	imgReq := httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.SessionID+"/image", nil)
	imgW := httptest.NewRecorder()
	router.ServeHTTP(imgW, imgReq)
	if imgW.Code != http.StatusOK {
		t.Fatalf("get image status = %d, want 200", imgW.Code)
	}
	if got := imgW.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("image content type = %q, want image/png", got)
	}

	w, tagged := doJSON(t, router, http.MethodPost, "/api/sessions/"+created.SessionID+"/tag", `{"label":"boo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("tag status = %d, body %s", w.Code, w.Body.String())
	}
	if tagged.State != "exhausted" {
		t.Errorf("state after tagging the only image = %q, want exhausted", tagged.State)
	}
	if !store.Has("boo_images/cat.png") {
		t.Error("tagged file missing from the boo folder")
	}

	// Undo brings it back and presents it again.
	w, undone := doJSON(t, router, http.MethodPost, "/api/sessions/"+created.SessionID+"/undo", "")
	if w.Code != http.StatusOK {
		t.Fatalf("undo status = %d, body %s", w.Code, w.Body.String())
	}
	if undone.State != "presenting" || undone.Image == nil || undone.Image.Key != "incoming/cat.png" {
		t.Errorf("after undo = %+v, want cat.png presented again", undone)
	}
}

func TestTagValidation(t *testing.T) {
	store := storagetest.NewFake()
	store.Put("incoming/cat.png", brightPNGBytes(t), time.Now())
	router := setupRouter(t, store)

	_, created := doJSON(t, router, http.MethodPost, "/api/sessions", "")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown label", `{"label":"tiger"}`, http.StatusBadRequest},
		{"missing label", `{}`, http.StatusBadRequest},
		{"malformed json", `{`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, router, http.MethodPost, "/api/sessions/"+created.SessionID+"/tag", tc.body)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestUnknownSession(t *testing.T) {
	router := setupRouter(t, storagetest.NewFake())
	w, _ := doJSON(t, router, http.MethodGet, "/api/sessions/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUndoWithNothingToUndo(t *testing.T) {
	router := setupRouter(t, storagetest.NewFake())
	_, created := doJSON(t, router, http.MethodPost, "/api/sessions", "")

	w, _ := doJSON(t, router, http.MethodPost, "/api/sessions/"+created.SessionID+"/undo", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEmptySourceSessionIsExhausted(t *testing.T) {
	router := setupRouter(t, storagetest.NewFake())
	w, created := doJSON(t, router, http.MethodPost, "/api/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if created.State != "exhausted" || created.Image != nil {
		t.Errorf("created = %+v, want exhausted with no image", created)
	}

	// Tagging with no presented image is rejected.
	w, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+created.SessionID+"/tag", `{"label":"boo"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("tag status = %d, want 400", w.Code)
	}
}
