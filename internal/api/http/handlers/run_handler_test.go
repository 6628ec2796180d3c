package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/internal/app/service"
	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage/filesystem"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/pkg/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	store, err := filesystem.NewStore(root)
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Storage.Filesystem.Root = root
	svc := service.NewRelabelService(cfg, store, nil, nil, nil,
		logging.NewNop(), nil, trace.NewNop())

	engine := gin.New()
	NewRunHandler(svc, logging.NewNop()).Register(engine.Group("/api/v1"))
	return engine
}

func datasetPayload(t *testing.T, n int) []byte {
	t.Helper()
	ds := &dataset.TransitionDataset{
		Observations:     make([][]float64, n),
		Actions:          make([][]float64, n),
		NextObservations: make([][]float64, n),
		Rewards:          make([]float64, n),
		Terminals:        make([]bool, n),
	}
	for i := 0; i < n; i++ {
		ds.Observations[i] = []float64{float64(i)}
		ds.Actions[i] = []float64{1}
		ds.NextObservations[i] = []float64{float64(i + 1)}
		ds.Rewards[i] = float64(i)
	}
	data, err := dataset.Encode(ds)
	require.NoError(t, err)
	return data
}

func TestUploadAndStats(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/datasets/datasets/test.json",
		bytes.NewReader(datasetPayload(t, 30)))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/datasets/datasets/test.json", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DatasetKey string `json:"dataset_key"`
		Stats      struct {
			Transitions int `json:"transitions"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "datasets/test.json", resp.DatasetKey)
	assert.Equal(t, 30, resp.Stats.Transitions)
}

func TestUploadRejectsGarbage(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/datasets/bad.json",
		bytes.NewReader([]byte("{broken")))
	router.ServeHTTP(w, req)
	assert.GreaterOrEqual(t, w.Code, 400)
}

func TestStartRunValidation(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs",
		bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartRunAccepted(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/datasets/datasets/run.json",
		bytes.NewReader(datasetPayload(t, 100)))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	body := []byte(`{"dataset_key":"datasets/run.json","num_pairs":8,"trajectory_len":4,"epochs":10,"seed":3}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/runs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+resp.RunID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetRunNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/unknown", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRuns(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
