package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/adapters/memory"
	"github.com/voiceflow-cms/server/adapters/speaker"
	"github.com/voiceflow-cms/server/adapters/stt"
	"github.com/voiceflow-cms/server/adapters/tts"
	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/internal/auth"
	"github.com/voiceflow-cms/server/internal/bus"
	"github.com/voiceflow-cms/server/internal/gateway"
	"github.com/voiceflow-cms/server/internal/metrics"
	"github.com/voiceflow-cms/server/internal/nlu"
	"github.com/voiceflow-cms/server/usecase"
)

type testEnv struct {
	e      *echo.Echo
	users  *memory.UserRepository
	issuer *auth.TokenIssuer
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	mr := miniredis.RunT(t)
	eventBus := bus.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger)

	users := memory.NewUserRepository()
	workspaces := memory.NewWorkspaceRepository()
	content := memory.NewContentRepository()
	profiles := memory.NewVoiceProfileRepository()

	audioConfig := repositories.AudioConfig{SampleRate: 16000, Encoding: "LINEAR16", Language: "en-US"}
	voice := usecase.NewVoiceService(
		stt.NewMockTranscriber(logger),
		tts.NewMockTTS(logger),
		speaker.NewMockEncoder(logger),
		profiles,
		audioConfig,
		0.75,
		logger,
	)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := NewHandler(users, workspaces, content, voice, eventBus, issuer, logger)

	registry := prometheus.NewRegistry()
	gw := gateway.New(
		stt.NewMockTranscriber(logger),
		nlu.NewClassifier(),
		eventBus,
		metrics.New(registry),
		gateway.Config{
			RingCapacity:      50,
			FillThreshold:     10,
			Audio:             audioConfig,
			TranscribeTimeout: time.Second,
		},
		logger,
	)

	e := echo.New()
	InitRoutes(e, handler, gw, registry)

	return &testEnv{e: e, users: users, issuer: issuer}
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// registerUser registers through the API and returns the token.
func (env *testEnv) registerUser(t *testing.T, email, username string) string {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/api/v1/users/register", "", RegisterRequest{
		Email:    email,
		Username: username,
		Password: "supersecret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Registration failed with %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	decode(t, rec, &resp)
	return resp.Token
}

func TestAPI_Health(t *testing.T) {
	env := setupAPI(t)
	rec := env.request(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	env := setupAPI(t)

	token := env.registerUser(t, "alice@example.com", "alice")
	if token == "" {
		t.Fatal("Registration should return a token")
	}

	// Duplicate email is rejected
	rec := env.request(t, http.MethodPost, "/api/v1/users/register", "", RegisterRequest{
		Email: "alice@example.com", Username: "alice2", Password: "supersecret",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %d", rec.Code)
	}

	// Short password is rejected
	rec = env.request(t, http.MethodPost, "/api/v1/users/register", "", RegisterRequest{
		Email: "bob@example.com", Username: "bob", Password: "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for weak password, got %d", rec.Code)
	}

	// Wrong password fails
	rec = env.request(t, http.MethodPost, "/api/v1/users/login", "", LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", rec.Code)
	}

	// Correct credentials succeed
	rec = env.request(t, http.MethodPost, "/api/v1/users/login", "", LoginRequest{
		Email: "alice@example.com", Password: "supersecret",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for valid login, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAPI_ProtectedRoutesRequireToken(t *testing.T) {
	env := setupAPI(t)

	rec := env.request(t, http.MethodGet, "/api/v1/users/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/api/v1/users/me", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bad token, got %d", rec.Code)
	}

	token := env.registerUser(t, "alice@example.com", "alice")
	rec = env.request(t, http.MethodGet, "/api/v1/users/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
	var user entities.User
	decode(t, rec, &user)
	if user.Username != "alice" {
		t.Errorf("Expected alice, got %s", user.Username)
	}
}

func TestAPI_WorkspaceOwnership(t *testing.T) {
	env := setupAPI(t)
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")

	rec := env.request(t, http.MethodPost, "/api/v1/workspaces", alice, WorkspaceRequest{Name: "blog"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var workspace entities.Workspace
	decode(t, rec, &workspace)

	// The owner sees it
	rec = env.request(t, http.MethodGet, "/api/v1/workspaces/"+workspace.ID, alice, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Owner should see the workspace, got %d", rec.Code)
	}

	// Someone else does not
	rec = env.request(t, http.MethodGet, "/api/v1/workspaces/"+workspace.ID, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Non-owner should get 404, got %d", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/api/v1/workspaces", bob, nil)
	var list []*entities.Workspace
	decode(t, rec, &list)
	if len(list) != 0 {
		t.Errorf("Bob should have no workspaces, got %d", len(list))
	}
}

func TestAPI_ContentLifecycle(t *testing.T) {
	env := setupAPI(t)
	token := env.registerUser(t, "alice@example.com", "alice")

	rec := env.request(t, http.MethodPost, "/api/v1/workspaces", token, WorkspaceRequest{Name: "blog"})
	var workspace entities.Workspace
	decode(t, rec, &workspace)

	rec = env.request(t, http.MethodPost, "/api/v1/workspaces/"+workspace.ID+"/content", token, ContentRequest{
		Title:    "My first post",
		Body:     "Hello world",
		Category: "blog",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var content entities.Content
	decode(t, rec, &content)
	if content.Status != entities.ContentDraft {
		t.Errorf("New content should be a draft, got %s", content.Status)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/content/"+content.ID+"/publish", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Publish failed with %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &content)
	if content.Status != entities.ContentPublished {
		t.Errorf("Expected published status, got %s", content.Status)
	}

	rec = env.request(t, http.MethodGet, "/api/v1/workspaces/"+workspace.ID+"/content", token, nil)
	var items []*entities.Content
	decode(t, rec, &items)
	if len(items) != 1 {
		t.Errorf("Expected 1 content item, got %d", len(items))
	}

	rec = env.request(t, http.MethodDelete, "/api/v1/content/"+content.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
}

func TestAPI_VoiceTranscribe(t *testing.T) {
	env := setupAPI(t)
	token := env.registerUser(t, "alice@example.com", "alice")

	audio := base64.StdEncoding.EncodeToString(make([]byte, 2000))
	rec := env.request(t, http.MethodPost, "/api/v1/voice/transcribe", token, TranscribeRequest{Audio: audio})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp TranscribeResponse
	decode(t, rec, &resp)
	if resp.Text == "" || resp.Confidence == 0 {
		t.Errorf("Expected transcript, got %v", resp)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/voice/transcribe", token, TranscribeRequest{Audio: "!!!"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for bad base64, got %d", rec.Code)
	}
}

func TestAPI_SpeakerEnrollAndIdentify(t *testing.T) {
	env := setupAPI(t)
	token := env.registerUser(t, "alice@example.com", "alice")

	sample := make([]byte, 512)
	for i := range sample {
		sample[i] = byte(i % 7)
	}
	encoded := base64.StdEncoding.EncodeToString(sample)

	// Identification before enrollment finds nothing
	rec := env.request(t, http.MethodPost, "/api/v1/voice/identify", token, IdentifyRequest{Audio: encoded})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before enrollment, got %d", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/voice/enroll", token, EnrollRequest{Samples: []string{encoded}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Enrollment failed with %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodPost, "/api/v1/voice/identify", token, IdentifyRequest{Audio: encoded})
	if rec.Code != http.StatusOK {
		t.Fatalf("Identify failed with %d: %s", rec.Code, rec.Body.String())
	}
	var resp IdentifyResponse
	decode(t, rec, &resp)
	if resp.Similarity < 0.75 {
		t.Errorf("Expected high similarity for the enrolled voice, got %f", resp.Similarity)
	}
}

func TestAPI_FlagsRequireAdmin(t *testing.T) {
	env := setupAPI(t)
	creator := env.registerUser(t, "alice@example.com", "alice")

	rec := env.request(t, http.MethodPut, "/api/v1/admin/flags/"+bus.FlagVoiceGate, creator, FlagRequest{Value: "off"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin, got %d", rec.Code)
	}

	// Promote an admin directly in the store and mint a token for it.
	admin := &entities.User{
		Email:        "root@example.com",
		Username:     "root",
		PasswordHash: "irrelevant",
		Role:         entities.RoleAdmin,
	}
	if err := env.users.Create(context.Background(), admin); err != nil {
		t.Fatal(err)
	}
	adminToken, err := env.issuer.Generate(admin.ID, admin.Username, string(admin.Role))
	if err != nil {
		t.Fatal(err)
	}

	rec = env.request(t, http.MethodPut, "/api/v1/admin/flags/"+bus.FlagVoiceGate, adminToken, FlagRequest{Value: "off"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Admin should set flags, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, "/api/v1/admin/flags/"+bus.FlagVoiceGate, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var flag map[string]string
	decode(t, rec, &flag)
	if flag["value"] != "off" {
		t.Errorf("Expected flag value off, got %s", flag["value"])
	}
}
