package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"cooknet/internal/antispam"
	"cooknet/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCaptioner struct {
	caption string
	err     error
}

func (f fakeCaptioner) Caption(ctx context.Context, title, description string) (string, error) {
	return f.caption, f.err
}

func (f fakeCaptioner) SuggestRecipes(ctx context.Context, photoURL string) (string, error) {
	return "", errors.New("not used on the web")
}

type fakeSink struct{ updates []tgbotapi.Update }

func (f *fakeSink) Enqueue(u tgbotapi.Update) bool {
	f.updates = append(f.updates, u)
	return true
}

type testEnv struct {
	srv    *Server
	router *gin.Engine
	store  *store.Store
	sink   *fakeSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(db)
	sink := &fakeSink{}
	srv := NewServer(
		st,
		antispam.New(0),
		fakeCaptioner{caption: "вкусно"},
		time.Second,
		"5",
		"test-secret",
		sink,
		"/webhook/test-token",
		zerolog.Nop(),
	)
	return &testEnv{srv: srv, router: srv.Router(), store: st, sink: sink}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) loginCookie(t *testing.T, username string) *http.Cookie {
	t.Helper()
	w := e.postForm(t, "/login", url.Values{"username": {username}})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == authCookie {
			return c
		}
	}
	t.Fatal("auth cookie not set")
	return nil
}

func (e *testEnv) seedRecipe(t *testing.T) *store.Recipe {
	t.Helper()
	r := &store.Recipe{Username: "alice", Title: "Борщ", Description: "Свекла"}
	if err := e.store.CreateRecipe(context.Background(), r); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	return r
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	if w := e.get(t, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
}

func TestRecipeDetailNotFound(t *testing.T) {
	e := newTestEnv(t)
	if w := e.get(t, "/recipes/9999"); w.Code != http.StatusNotFound {
		t.Fatalf("got %d", w.Code)
	}
}

func TestRecipeListAndDetail(t *testing.T) {
	e := newTestEnv(t)
	r := e.seedRecipe(t)

	w := e.get(t, "/recipes")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Борщ") {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	w = e.get(t, "/recipes/"+strconv.Itoa(int(r.ID)))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Свекла") {
		t.Fatalf("detail: %d %s", w.Code, w.Body.String())
	}
}

func TestLikeIncrementsAndRedirects(t *testing.T) {
	e := newTestEnv(t)
	r := e.seedRecipe(t)
	path := "/recipes/" + strconv.Itoa(int(r.ID)) + "/like"

	w := e.postForm(t, path, url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("got %d", w.Code)
	}
	got, err := e.store.GetRecipe(context.Background(), r.ID)
	if err != nil || got.Likes != 1 {
		t.Fatalf("likes=%d err=%v", got.Likes, err)
	}
}

func TestLikeMissingRecipeIs404(t *testing.T) {
	e := newTestEnv(t)
	if w := e.postForm(t, "/recipes/9999/like", url.Values{}); w.Code != http.StatusNotFound {
		t.Fatalf("got %d", w.Code)
	}
}

func TestLikeBlockedByGateRedirectsWithoutIncrement(t *testing.T) {
	e := newTestEnv(t)
	e.srv.gate = antispam.New(time.Hour)
	r := e.seedRecipe(t)
	path := "/recipes/" + strconv.Itoa(int(r.ID)) + "/like"

	if w := e.postForm(t, path, url.Values{}); w.Code != http.StatusSeeOther {
		t.Fatalf("first like: %d", w.Code)
	}
	if w := e.postForm(t, path, url.Values{}); w.Code != http.StatusSeeOther {
		t.Fatalf("blocked like should still redirect: %d", w.Code)
	}
	got, _ := e.store.GetRecipe(context.Background(), r.ID)
	if got.Likes != 1 {
		t.Fatalf("blocked like incremented: %d", got.Likes)
	}
}

func TestCommentChallengeMismatchRejected(t *testing.T) {
	e := newTestEnv(t)
	r := e.seedRecipe(t)
	path := "/recipes/" + strconv.Itoa(int(r.ID)) + "/comment"

	w := e.postForm(t, path, url.Values{"captcha": {"7"}, "text": {"hi"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d", w.Code)
	}
	comments, _ := e.store.ListComments(context.Background(), r.ID, 10)
	if len(comments) != 0 {
		t.Fatal("comment written despite failed challenge")
	}
}

func TestCommentEmptyBodySilentlyDropped(t *testing.T) {
	e := newTestEnv(t)
	r := e.seedRecipe(t)
	path := "/recipes/" + strconv.Itoa(int(r.ID)) + "/comment"

	w := e.postForm(t, path, url.Values{"captcha": {"5"}, "text": {"   "}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("got %d", w.Code)
	}
	comments, _ := e.store.ListComments(context.Background(), r.ID, 10)
	if len(comments) != 0 {
		t.Fatal("empty comment written")
	}
}

func TestCommentWritten(t *testing.T) {
	e := newTestEnv(t)
	r := e.seedRecipe(t)
	path := "/recipes/" + strconv.Itoa(int(r.ID)) + "/comment"

	w := e.postForm(t, path, url.Values{"captcha": {"5"}, "text": {"Очень вкусно"}, "username": {"bob"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("got %d", w.Code)
	}
	comments, _ := e.store.ListComments(context.Background(), r.ID, 10)
	if len(comments) != 1 || comments[0].Author != "bob" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}

func TestAddRecipeRequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	w := e.postForm(t, "/add", url.Values{"title": {"T"}, "description": {"D"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", w.Code)
	}
}

func TestAddRecipeWithAuth(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.loginCookie(t, "carol")

	w := e.postForm(t, "/add", url.Values{"title": {"Паста"}, "description": {"С сыром"}}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	recipes, _ := e.store.ListRecipes(context.Background(), 10)
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}
	r := recipes[0]
	if r.Username != "carol" || r.Caption != "вкусно" {
		t.Fatalf("unexpected recipe: %+v", r)
	}
}

func TestAddRecipeValidatesRequiredFields(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.loginCookie(t, "carol")

	w := e.postForm(t, "/add", url.Values{"title": {"  "}, "description": {"D"}}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d", w.Code)
	}
}

func TestAddRecipeFallsBackOnCaptionerFailure(t *testing.T) {
	e := newTestEnv(t)
	e.srv.captioner = fakeCaptioner{err: errors.New("down")}
	cookie := e.loginCookie(t, "carol")

	w := e.postForm(t, "/add", url.Values{"title": {"Soup"}, "description": {"Hot soup"}}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("got %d", w.Code)
	}
	recipes, _ := e.store.ListRecipes(context.Background(), 10)
	if len(recipes) != 1 || recipes[0].Caption != "Hot soup" {
		t.Fatalf("fallback caption missing: %+v", recipes)
	}
}

func TestChatBoardPostAndList(t *testing.T) {
	e := newTestEnv(t)

	w := e.postForm(t, "/chat", url.Values{"captcha": {"5"}, "text": {"привет"}, "username": {"u"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("post: %d", w.Code)
	}
	w = e.get(t, "/chat")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "привет") {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
}

func TestProfileNotFound(t *testing.T) {
	e := newTestEnv(t)
	if w := e.get(t, "/profile/nobody"); w.Code != http.StatusNotFound {
		t.Fatalf("got %d", w.Code)
	}
}

func TestProfileListsRecipes(t *testing.T) {
	e := newTestEnv(t)
	e.seedRecipe(t)
	if _, err := e.store.UpsertUser(context.Background(), "1", "alice"); err != nil {
		t.Fatal(err)
	}
	w := e.get(t, "/profile/alice")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Борщ") {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestInviteRedemption(t *testing.T) {
	e := newTestEnv(t)
	inv, err := e.store.GetOrCreateInvite(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}

	w := e.get(t, "/invite/"+inv.Code)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alice") {
		t.Fatalf("redeem: %d %s", w.Code, w.Body.String())
	}
	// Single-use: the second redemption is gone.
	if w := e.get(t, "/invite/"+inv.Code); w.Code != http.StatusGone {
		t.Fatalf("second redeem: %d", w.Code)
	}
	if w := e.get(t, "/invite/no-such-code"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown code: %d", w.Code)
	}
}

func TestWebhookEnqueuesAndAcks(t *testing.T) {
	e := newTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/test-token", strings.NewReader(`{"update_id": 7}`))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
	if len(e.sink.updates) != 1 || e.sink.updates[0].UpdateID != 7 {
		t.Fatalf("update not enqueued: %+v", e.sink.updates)
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	e := newTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/test-token", strings.NewReader("{not json"))
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", w.Code)
	}
	if len(e.sink.updates) != 0 {
		t.Fatal("malformed update enqueued")
	}
}
