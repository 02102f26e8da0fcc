package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"photo-gallery/internal/config"
	"photo-gallery/internal/db"
	"photo-gallery/internal/hosting"
	"photo-gallery/internal/loader"
	"photo-gallery/internal/manage"
	"photo-gallery/internal/models"
	"photo-gallery/internal/services"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var published = []models.Photo{
	{ID: 1, Src: "https://img/cat.jpg", Title: "Cat", Date: "2023-01-01"},
	{ID: 2, Src: "https://img/dog.jpg", Title: "Dog", Date: "2024-01-01"},
	{ID: 3, Src: "https://img/bird.jpg", Title: "Bird", Date: "2022-01-01"},
}

type testEnv struct {
	app        *fiber.App
	manage     *services.ManageService
	hub        *Hub
	cloudCalls *atomic.Int32
	dataFile   string
}

func newTestEnv(t *testing.T, configured bool, cloud http.HandlerFunc) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	dataFile := filepath.Join(t.TempDir(), "gallery-data.json")
	body, err := manage.Export(published)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dataFile, body, 0644))

	dataSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, dataFile)
	}))
	t.Cleanup(dataSrv.Close)

	calls := &atomic.Int32{}
	cloudSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cloud(w, r)
	}))
	t.Cleanup(cloudSrv.Close)

	hostCfg := config.HostingConfig{APIBase: cloudSrv.URL}
	if configured {
		hostCfg.CloudName = "demo"
		hostCfg.UploadPreset = "unsigned"
	}

	conn, err := db.InitDB(db.MemoryDSN, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseDB(conn) })

	src := loader.New(dataSrv.URL+"/gallery-data.json", logger)
	draft := manage.NewController(published)
	hub := NewHub(logger)
	draft.OnChange(func(s manage.State) { hub.Broadcast(SnapshotMessage(s)) })

	manageSvc := services.NewManageService(draft, src, hosting.NewClient(hostCfg), db.NewJournal(conn), logger)
	app := fiber.New()
	SetupRoutes(app, Deps{
		Gallery:  services.NewGalleryService(src, "en", logger),
		Manage:   manageSvc,
		Hub:      hub,
		DataFile: dataFile,
		Logger:   logger,
	})

	return &testEnv{app: app, manage: manageSvc, hub: hub, cloudCalls: calls, dataFile: dataFile}
}

func okCloud(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"secure_url":"https://res.cloudinary.com/demo/new.jpg","public_id":"new"}`)
}

func uploadRequest(t *testing.T, withFile bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Fox"))
	require.NoError(t, mw.WriteField("date", "2024-05-01"))
	require.NoError(t, mw.WriteField("description", "A fox"))
	if withFile {
		part, err := mw.CreateFormFile("file", "fox.jpg")
		require.NoError(t, err)
		_, _ = part.Write([]byte("jpegbytes"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func countClass(t *testing.T, body io.Reader, class string) int {
	t.Helper()
	doc, err := html.Parse(body)
	require.NoError(t, err)
	n := 0
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, a := range node.Attr {
				if a.Key == "class" && strings.Contains(" "+a.Val+" ", " "+class+" ") {
					n++
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return n
}

func TestHome(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/?q=o", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, 1, countClass(t, resp.Body, "photo"), "only Dog contains o")

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/?q=zebra", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 1, countClass(t, resp.Body, "empty"))
}

func TestGalleryAPI(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/gallery?sort=title&photo=2", nil), -1)
	require.NoError(t, err)
	var body struct {
		Total  int            `json:"total"`
		Photos []models.Photo `json:"photos"`
		Open   *models.Photo  `json:"open"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, []int64{3, 1, 2}, models.PhotoIDs(body.Photos))
	require.NotNil(t, body.Open)
	assert.Equal(t, int64(2), body.Open.ID)
}

func TestDataFile(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/gallery-data.json", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	photos, err := loader.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, published, photos)

	require.NoError(t, os.Remove(env.dataFile))
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/gallery-data.json", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpload(t *testing.T) {
	t.Run("success prepends", func(t *testing.T) {
		env := newTestEnv(t, true, okCloud)

		resp, err := env.app.Test(uploadRequest(t, true), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body struct {
			Photo  models.Photo `json:"photo"`
			Status string       `json:"status"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "https://res.cloudinary.com/demo/new.jpg", body.Photo.Src)
		assert.Equal(t, "Fox", body.Photo.Title)
		assert.Equal(t, manage.StatusSuccess, body.Status)

		st := env.manage.Snapshot()
		require.Len(t, st.Photos, 4)
		assert.Equal(t, body.Photo.ID, st.Photos[0].ID)

		resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/uploads", nil), -1)
		require.NoError(t, err)
		var recs []models.UploadRecord
		decodeBody(t, resp, &recs)
		require.Len(t, recs, 1)
		assert.Equal(t, models.UploadStatusUploaded, recs[0].Status)
	})

	t.Run("no file", func(t *testing.T) {
		env := newTestEnv(t, true, okCloud)

		resp, err := env.app.Test(uploadRequest(t, false), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body uploadReply
		decodeBody(t, resp, &body)
		assert.Equal(t, "Please select a file to upload.", body.Error)
		assert.Equal(t, manage.PhaseIdle, body.Upload.Phase, "trigger stays enabled after a rejection")
		assert.Zero(t, env.cloudCalls.Load())
		assert.Len(t, env.manage.Snapshot().Photos, 3)
	})

	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t, false, okCloud)

		resp, err := env.app.Test(uploadRequest(t, true), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body uploadReply
		decodeBody(t, resp, &body)
		assert.False(t, body.Upload.Busy())
		assert.Zero(t, env.cloudCalls.Load())
	})

	t.Run("upstream failure", func(t *testing.T) {
		env := newTestEnv(t, true, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Invalid image file"}}`)
		})

		resp, err := env.app.Test(uploadRequest(t, true), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		var body uploadReply
		decodeBody(t, resp, &body)
		assert.Equal(t, "Upload failed: Invalid image file", body.Error)
		assert.Equal(t, manage.PhaseFailure, body.Upload.Phase)
		assert.Len(t, env.manage.Snapshot().Photos, 3)
	})

	t.Run("in flight", func(t *testing.T) {
		release := make(chan struct{})
		env := newTestEnv(t, true, func(w http.ResponseWriter, r *http.Request) {
			<-release
			okCloud(w, r)
		})

		first := make(chan int, 1)
		firstReq := uploadRequest(t, true)
		go func() {
			resp, err := env.app.Test(firstReq, -1)
			if err != nil {
				first <- 0
				return
			}
			resp.Body.Close()
			first <- resp.StatusCode
		}()
		require.Eventually(t, func() bool { return env.manage.Snapshot().Upload.Busy() }, 2*time.Second, 5*time.Millisecond)

		resp, err := env.app.Test(uploadRequest(t, true), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var body uploadReply
		decodeBody(t, resp, &body)
		assert.Equal(t, manage.PhaseUploading, body.Upload.Phase, "trigger stays disabled while the first upload runs")

		close(release)
		assert.Equal(t, http.StatusCreated, <-first)
		assert.Equal(t, int32(1), env.cloudCalls.Load())
	})
}

type uploadReply struct {
	Error  string              `json:"error"`
	Upload manage.UploadStatus `json:"upload"`
}

func TestDeleteMoveReorder(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/photos/99", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, env.manage.Snapshot().Photos, 3)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/photos/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	move := httptest.NewRequest(http.MethodPost, "/api/photos/1/move",
		strings.NewReader(`{"pointer_y":10,"siblings":[{"id":2,"top":0,"height":40},{"id":3,"top":40,"height":40}]}`))
	move.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(move, -1)
	require.NoError(t, err)
	var st manage.State
	decodeBody(t, resp, &st)
	assert.Equal(t, []int64{1, 2, 3}, models.PhotoIDs(st.Photos))

	move = httptest.NewRequest(http.MethodPost, "/api/photos/1/move", strings.NewReader(`{"to":2}`))
	move.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(move, -1)
	require.NoError(t, err)
	decodeBody(t, resp, &st)
	assert.Equal(t, []int64{2, 3, 1}, models.PhotoIDs(st.Photos))

	move = httptest.NewRequest(http.MethodPost, "/api/photos/42/move", strings.NewReader(`{"to":0}`))
	move.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(move, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	order := httptest.NewRequest(http.MethodPut, "/api/photos/order", strings.NewReader(`{"ids":[3,3,1]}`))
	order.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(order, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	order = httptest.NewRequest(http.MethodPut, "/api/photos/order", strings.NewReader(`{"ids":[3,1,2]}`))
	order.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(order, -1)
	require.NoError(t, err)
	decodeBody(t, resp, &st)
	assert.Equal(t, []int64{3, 1, 2}, models.PhotoIDs(st.Photos))

	resp, err = env.app.Test(httptest.NewRequest(http.MethodDelete, "/api/photos/1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []int64{3, 2}, models.PhotoIDs(env.manage.Snapshot().Photos))

	resp, err = env.app.Test(httptest.NewRequest(http.MethodPost, "/api/photos/reload", nil), -1)
	require.NoError(t, err)
	decodeBody(t, resp, &st)
	assert.Equal(t, []int64{1, 2, 3}, models.PhotoIDs(st.Photos))
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/export", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="gallery-data.json"`)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("[\n  {\n    \"id\": 1,")), "two-space indent")

	photos, err := loader.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, published, photos)
}

func TestAdminPage(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, countClass(t, resp.Body, "item"))
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/ws/manage", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestWebsocketSnapshots(t *testing.T) {
	env := newTestEnv(t, true, okCloud)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/manage", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg struct {
		Event string       `json:"event"`
		Data  manage.State `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventConnected, msg.Event)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventSnapshot, msg.Event)
	assert.Len(t, msg.Data.Photos, 3)

	require.Eventually(t, func() bool { return env.hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	env.manage.Delete(2)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventSnapshot, msg.Event)
	assert.Equal(t, []int64{1, 3}, models.PhotoIDs(msg.Data.Photos))
}

func TestHub(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := hub.Register("a")
	b := hub.Register("b")

	hub.Broadcast("hello")
	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-b)

	hub.Unregister("a")
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, hub.Count())

	for i := 0; i < clientBuffer+5; i++ {
		hub.Broadcast(i)
	}
	assert.Len(t, b, clientBuffer, "overflow dropped, not blocked")
	hub.Unregister("a")
}
