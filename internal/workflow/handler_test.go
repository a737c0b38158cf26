package workflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnelahh/eDiploma-app-sub000/internal/documents"
	"github.com/arnelahh/eDiploma-app-sub000/internal/pipeline"
	"github.com/arnelahh/eDiploma-app-sub000/internal/render"
	"github.com/arnelahh/eDiploma-app-sub000/internal/theses"
)

func newTestRouter(t *testing.T) (*gin.Engine, *documents.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := documents.NewMemoryRepo()
	provider := theses.NewMemoryProvider()
	provider.PutThesis(theses.Thesis{
		ID:           7,
		Title:        "Analiza distribuiranih sistema",
		StudentName:  "Amina Hodžić",
		StudentIndex: "IB180042",
		StudyProgram: "Računarstvo i informatika",
		Cycle:        2,
	})
	provider.PutCommission(7, []theses.CommissionMember{
		{ThesisID: 7, Position: 1, Role: "predsjednik", Title: "prof. dr.", Name: "Selma Kovačević"},
	})

	svc := &Service{
		Docs:     repo,
		Gate:     &pipeline.Gate{Docs: repo},
		Theses:   provider,
		Renderer: render.New(nil),
		Now:      func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC) },
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", int64(11))
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSaveEndpointAssignsNumber(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/theses/7/documents/thesis_approval",
		`{"numberDigits":"0001"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var doc DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.DocumentNumber != "11-403-102-0001/25" || doc.Status != "READY" {
		t.Fatalf("unexpected response: %+v", doc)
	}
	if doc.NumberDigits != "0001" {
		t.Fatalf("expected echoed digits, got %q", doc.NumberDigits)
	}
}

func TestSaveEndpointBlockedConflict(t *testing.T) {
	router, repo := newTestRouter(t)
	before := repo.WriteCount()

	resp := doJSON(t, router, http.MethodPut, "/api/v1/theses/7/documents/defense_notice",
		`{"numberDigits":"2252"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Missing []string `json:"missing"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.Code != ErrorCodeBlocked {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	if len(body.Error.Details.Missing) != 2 {
		t.Fatalf("expected both decisions in missing, got %v", body.Error.Details.Missing)
	}
	if repo.WriteCount() != before {
		t.Fatal("blocked save must not write")
	}
}

func TestSaveEndpointInvalidDigits(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/theses/7/documents/thesis_approval",
		`{"numberDigits":"123"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), ErrorCodeInvalidNum) {
		t.Fatalf("expected %s, got %s", ErrorCodeInvalidNum, resp.Body.String())
	}
}

func TestSaveEndpointUnknownStage(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/theses/7/documents/diploma_supplement", `{}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), ErrorCodeUnknownType) {
		t.Fatalf("expected %s, got %s", ErrorCodeUnknownType, resp.Body.String())
	}
}

func TestSaveEndpointInvalidThesisID(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/theses/abc/documents/thesis_approval", `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetEndpointNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/theses/7/documents/thesis_approval", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStartEndpointCreatesDraft(t *testing.T) {
	router, repo := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/theses/7/documents/thesis_approval/start", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/theses/7/documents/thesis_approval", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 after start, got %d", resp.Code)
	}
	var doc DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Status != "IN_PROGRESS" {
		t.Fatalf("expected IN_PROGRESS draft, got %s", doc.Status)
	}
	if repo.WriteCount() != 1 {
		t.Fatalf("expected one write, got %d", repo.WriteCount())
	}
}

func TestSummaryEndpointListsAllStages(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/theses/7/documents/thesis_approval",
		`{"numberDigits":"0001"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("save: %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/theses/7/documents", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var stages []StageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &stages); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(stages) != 6 {
		t.Fatalf("expected 6 stages, got %d", len(stages))
	}
	if stages[0].State != "READY" || stages[0].DocumentNumber != "11-403-102-0001/25" {
		t.Fatalf("approval row: %+v", stages[0])
	}
	if stages[1].State != pipeline.StateNotStarted || stages[1].Blocked {
		t.Fatalf("commission row: %+v", stages[1])
	}
	if !stages[2].Blocked {
		t.Fatalf("notice row: %+v", stages[2])
	}
}

func TestDownloadEndpointServesArtifact(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPut, "/api/v1/theses/7/documents/thesis_approval",
		`{"numberDigits":"0001"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("save: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/theses/7/documents/thesis_approval/file", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "11-403-102-0001/25") {
		t.Fatal("artifact must contain the protocol number")
	}
}
