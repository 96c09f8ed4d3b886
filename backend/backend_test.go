package backend

import (
	"database/sql"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/wansing/confer/auth"
	"github.com/wansing/confer/core"
	"github.com/wansing/confer/filestore"
	"github.com/wansing/confer/sqldb"
	"github.com/wansing/confer/sqldb/sqlite3"
)

type testServer struct {
	*httptest.Server
	db *core.CoreDB
}

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := &core.CoreDB{
		CapabilityDB: sqldb.NewCapabilityDB(sqlDB),
		ConflictDB:   sqldb.NewConflictDB(sqlDB),
		PaperDB:      sqldb.NewPaperDB(sqlDB, sqlite3.InsertIgnore),
		ReviewDB:     sqldb.NewReviewDB(sqlDB),
		SettingDB:    sqldb.NewSettingDB(sqlDB),
		TrackDB:      sqldb.NewTrackDB(sqlDB),
		UserDB:       sqldb.NewUserDB(sqlDB),
		HMACSecret:   "test secret",
	}
	assert.NoError(t, db.Init(memstore.New(), ""))

	dir, err := ioutil.TempDir("", "confer-test")
	assert.NoError(t, err)

	srv := httptest.NewServer(db.SessionManager.LoadAndSave(NewRouter(db, filestore.NewStore(dir), "")))
	cleanup := func() {
		srv.Close()
		os.RemoveAll(dir)
		sqlDB.Close()
	}
	return &testServer{srv, db}, cleanup
}

// client returns an http client with a cookie jar which does not follow
// redirects, so the tests can assert on them.
func (srv *testServer) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	assert.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (srv *testServer) createUser(t *testing.T, mail, password string, roles auth.Role) auth.DBUser {
	t.Helper()
	u, err := srv.db.UserDB.InsertUser(mail)
	assert.NoError(t, err)
	assert.NoError(t, srv.db.SetPassword(u, password))
	assert.NoError(t, srv.db.SetRoles(u, roles))
	return u
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	assert.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp, string(body)
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, form)
	assert.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.client(t)

	resp, _ := get(t, client, srv.URL+"/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = get(t, client, srv.URL+"/papers")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body := get(t, client, srv.URL+"/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="password"`)
}

func TestLoginFlow(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.client(t)
	srv.createUser(t, "chair@example.org", "s3cret", auth.PC|auth.Chair)

	resp := postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"chair@example.org"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a failed login re-renders the form")

	resp = postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"chair@example.org"},
		"password": {"s3cret"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/papers", resp.Header.Get("Location"))

	resp, body := get(t, client, srv.URL+"/papers")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Papers")

	resp, _ = get(t, client, srv.URL+"/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = get(t, client, srv.URL+"/papers")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestSubmitAndViewPaper(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.client(t)
	srv.createUser(t, "author@example.org", "s3cret", 0)

	postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"author@example.org"},
		"password": {"s3cret"},
	})

	resp := postForm(t, client, srv.URL+"/submit", url.Values{
		"title":    {"Quantum Gossip"},
		"abstract": {"We **propagate** rumours."},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/paper/1", resp.Header.Get("Location"))

	resp, body := get(t, client, srv.URL+"/paper/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Quantum Gossip")
	assert.Contains(t, body, "<strong>propagate</strong>", "markdown abstract")
	assert.Contains(t, body, "author@example.org", "authors see themselves")

	// finalize the submission
	resp = postForm(t, client, srv.URL+"/paper/1", url.Values{"action": {"finalize"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	paper, err := srv.db.NewPaper(1)
	assert.NoError(t, err)
	assert.True(t, paper.Submitted())
}

func TestReviewTokenLogin(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	reviewer := srv.createUser(t, "ext@example.org", "s3cret", 0)

	paper, err := srv.db.CreatePaper("Quantum Gossip", "", false, 1000)
	assert.NoError(t, err)
	assert.NoError(t, srv.db.FinalizePaper(paper))
	assert.NoError(t, srv.db.AddReview(paper, reviewer.ID(), core.ReviewExternal, 0, 0))
	rev, err := srv.db.ReviewDB.GetReview(paper.ID(), reviewer.ID())
	assert.NoError(t, err)
	assert.NoError(t, srv.db.SetReviewToken(rev, 7777))

	client := srv.client(t)
	resp := postForm(t, client, srv.URL+"/login", url.Values{
		"reviewtoken": {auth.FormatReviewToken(7777)},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := get(t, client, srv.URL+"/paper/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Quantum Gossip")

	client = srv.client(t)
	resp = postForm(t, client, srv.URL+"/login", url.Values{
		"reviewtoken": {auth.FormatReviewToken(1234)},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "an unknown token re-renders the form")
}

func TestReviewFieldVisibility(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	author := srv.createUser(t, "author@example.org", "s3cret", 0)
	reviewer := srv.createUser(t, "pc@example.org", "s3cret", auth.PC)

	paper, err := srv.db.CreatePaper("Quantum Gossip", "", false, author.ID())
	assert.NoError(t, err)
	assert.NoError(t, srv.db.FinalizePaper(paper))
	assert.NoError(t, srv.db.SetSetting(core.DeadlineRevOpen, 1))
	assert.NoError(t, srv.db.SetSetting(core.SettingSeeDecision, int64(core.SeeDecAuthor)))

	pcClient := srv.client(t)
	postForm(t, pcClient, srv.URL+"/login", url.Values{
		"email":    {"pc@example.org"},
		"password": {"s3cret"},
	})

	// the first visit creates the self-assignment and shows the form
	reviewURL := fmt.Sprintf("%s/paper/%d/review/%d", srv.URL, paper.ID(), reviewer.ID())
	resp, body := get(t, pcClient, reviewURL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="overallMerit"`)
	assert.Contains(t, body, `name="commentsForPC"`)

	resp = postForm(t, pcClient, reviewURL, url.Values{
		"action":        {"save"},
		"overallMerit":  {"4"},
		"commentsForPC": {"weak accept, lively rebuttal expected"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	rev, err := srv.db.ReviewDB.GetReview(paper.ID(), reviewer.ID())
	assert.NoError(t, err)
	assert.Equal(t, 4, rev.OverallMerit())
	assert.Equal(t, "weak accept, lively rebuttal expected", rev.CommentsForPC())

	resp = postForm(t, pcClient, reviewURL, url.Values{"action": {"submit"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// a bare submit leaves the saved values alone
	rev, err = srv.db.ReviewDB.GetReview(paper.ID(), reviewer.ID())
	assert.NoError(t, err)
	assert.Equal(t, 4, rev.OverallMerit())

	// the reviewer sees both fields on the paper page
	_, body = get(t, pcClient, srv.URL+"/paper/1")
	assert.Contains(t, body, "<td>4</td>")
	assert.Contains(t, body, "lively rebuttal")

	// authors get the overall merit but never the committee comments
	authorClient := srv.client(t)
	postForm(t, authorClient, srv.URL+"/login", url.Values{
		"email":    {"author@example.org"},
		"password": {"s3cret"},
	})
	resp, body = get(t, authorClient, srv.URL+"/paper/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Overall merit")
	assert.Contains(t, body, "<td>4</td>")
	assert.NotContains(t, body, "lively rebuttal")
}

func TestCapabilityLink(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	paper, err := srv.db.CreatePaper("Quantum Gossip", "", false, 1000)
	assert.NoError(t, err)

	capText := auth.EncodeCapability([]byte(srv.db.HMACSecret), auth.AuthorViewKey(paper.ID()), 1)
	client := srv.client(t)

	resp, body := get(t, client, srv.URL+"/paper/1?cap="+url.QueryEscape(capText))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Quantum Gossip")

	// a tampered capability falls back to the anonymous identity
	resp, _ = get(t, client, srv.URL+"/paper/1?cap="+url.QueryEscape(capText+"x"))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestChairPages(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.client(t)
	srv.createUser(t, "chair@example.org", "s3cret", auth.PC|auth.Chair)
	postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"chair@example.org"},
		"password": {"s3cret"},
	})

	for _, path := range []string{"/settings", "/tracks", "/users", "/users/create", "/user/1"} {
		resp, _ := get(t, client, srv.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp := postForm(t, client, srv.URL+"/tracks", url.Values{
		"action": {"add"},
		"tag":    {"hw"},
		"right":  {"view"},
		"perm":   {"+hardware"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.False(t, srv.db.Tracks().Empty())
}
