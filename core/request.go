package core

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/confer/auth"
	"golang.org/x/text/language"
)

type Notification struct {
	Message string
	Style   string
}

func init() {
	gob.Register([]Notification{}) // required for storing Notifications in a session
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish, // default
	language.German,
})

var monthNamesDe = strings.NewReplacer(
	"January", "Januar",
	"February", "Februar",
	"March", "März",
	"May", "Mai",
	"June", "Juni",
	"July", "Juli",
	"October", "Oktober",
	"December", "Dezember",
)

// A Request is created by CoreDB.NewRequest. It holds the activated
// Identity of the session user, possibly escalated by a capability or
// review token from the URL.
type Request struct {
	db       *CoreDB // unexported, so it can't be accessed in templates
	Identity *Identity

	// http
	writer  http.ResponseWriter
	request *http.Request

	// robustness
	statusWritten bool

	// caching
	language language.Tag
}

// NewRequest creates a Request with the given http.ResponseWriter and
// http.Request. It activates the session user (or an anonymous identity),
// merges a "cap" URL capability and a "token" URL review token, and applies
// the "forceShow" conflict override for the duration of the request.
func (c *CoreDB) NewRequest(w http.ResponseWriter, httpreq *http.Request) *Request {

	var req = &Request{
		db:      c,
		writer:  w,
		request: httpreq,
	}

	req.language, _ = language.MatchStrings(langMatcher, httpreq.Header.Get("Accept-Language"))

	if uid := c.SessionManager.GetInt(httpreq.Context(), "uid"); uid != 0 {
		u, err := c.UserDB.GetUser(uid)
		if u != nil && err == nil {
			req.Identity = c.NewIdentity(u)
		}
		// ignore errors
	}
	if req.Identity == nil {
		req.Identity = c.AnonymousIdentity()
	}

	if token := c.SessionManager.GetInt64(httpreq.Context(), "token"); token != 0 {
		req.Identity.SetReviewToken(token)
	}

	if capText := httpreq.FormValue("cap"); capText != "" {
		if key, value, err := auth.DecodeCapability([]byte(c.HMACSecret), capText); err == nil {
			req.Identity.AddCapability(key, value)
		}
		// a bad capability is not an error, the bearer just stays who they are
	}
	if token := httpreq.FormValue("token"); token != "" {
		if t, err := auth.ParseReviewToken(token); err == nil {
			req.Identity.SetReviewToken(t)
		}
	}
	if httpreq.FormValue("forceShow") == "1" {
		req.Identity.SetOverrides(req.Identity.Overrides() | OverrideConflict)
	}

	return req
}

// Danger adds a "danger" notification to the session.
func (req *Request) Danger(err error) {
	req.addNotification(err.Error(), "danger")
}

// Success adds a "success" notification to the session.
func (req *Request) Success(format string, args ...interface{}) {
	req.addNotification(fmt.Sprintf(format, args...), "success")
}

// style should be a bootstrap alert style without the leading "alert-"
func (req *Request) addNotification(message, style string) {
	notifications, _ := req.db.SessionManager.Get(req.request.Context(), "notifications").([]Notification)
	notifications = append(notifications, Notification{message, style})
	req.db.SessionManager.Put(req.request.Context(), "notifications", notifications)
}

// RenderNotifications removes all notifications from the session and
// renders them into an HTML string. If the HTTP status had already been
// written, it does nothing.
func (req *Request) RenderNotifications() template.HTML {
	var r string
	if !req.statusWritten {
		notifications, _ := req.db.SessionManager.Pop(req.request.Context(), "notifications").([]Notification)
		for _, n := range notifications {
			r += `<div class="alert alert-` + n.Style + ` mt-3" role="alert">` + n.Message + `</div>`
		}
	}
	return template.HTML(r)
}

// Cleanup destroys the session (which means re-setting the cookie with zero
// lifetime) if the session has been modified and is empty now.
func (req *Request) Cleanup() {
	sessMan := req.db.SessionManager
	if sessMan.Status(req.request.Context()) == scs.Modified && len(sessMan.Keys(req.request.Context())) == 0 {
		_ = sessMan.Destroy(req.request.Context())
	}
}

// SeeOther sets the HTTP header to redirect to an URL.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if req.statusWritten {
		return
	}
	var url = fmt.Sprintf(format, args...)
	http.Redirect(req.writer, req.request, url, http.StatusSeeOther)
	req.statusWritten = true
}

// Login tries to log in a user. On success, the user id is stored in the
// session.
func (req *Request) Login(mail string, enteredPass string) error {
	if req.LoggedIn() {
		return nil
	}
	u, err := req.db.UserDB.LoginUser(mail, enteredPass)
	if err != nil {
		return err // is ErrAuth if mail or enteredPass is wrong
	}
	req.Identity = req.db.NewIdentity(u)
	req.Success("Welcome %s!", u.Name())
	req.db.SessionManager.Put(req.request.Context(), "uid", u.ID())
	return nil
}

// LoginToken attaches a review token to the identity without an account.
// The token is kept in the session so it survives redirects.
func (req *Request) LoginToken(text string) error {
	token, err := auth.ParseReviewToken(text)
	if err != nil {
		return err
	}
	if _, err := req.db.ReviewDB.GetReviewByToken(token); err != nil {
		return err
	}
	req.Identity.SetReviewToken(token)
	req.db.SessionManager.Put(req.request.Context(), "token", token)
	return nil
}

func (req *Request) LoggedIn() bool {
	return req.Identity.User() != nil
}

// Logout removes the user id and review token from the session and calls
// req.Cleanup().
func (req *Request) Logout() {
	if req.LoggedIn() {
		req.db.SessionManager.Remove(req.request.Context(), "uid")
	}
	req.db.SessionManager.Remove(req.request.Context(), "token")
	req.Cleanup()
}

// OpenPaper loads a paper and checks view permission.
func (req *Request) OpenPaper(paperID int) (*Paper, error) {
	paper, err := req.db.NewPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("open paper %d: %w", paperID, err)
	}
	if reason := paper.PermViewPaper(req.Identity); reason != nil {
		return nil, fmt.Errorf("open paper %d: %w", paperID, ErrUnauthorized)
	}
	return paper, nil
}

// IsRootAdmin returns true if the user can administer site-wide.
func (req *Request) IsRootAdmin() bool {
	return req.Identity.CanAdministerAny()
}

func (req *Request) FormatDateTime(ts int64) string {
	b, _ := req.language.Base()
	switch b.String() {
	case "de":
		return monthNamesDe.Replace(time.Unix(ts, 0).Format("2. January 2006 15:04 Uhr"))
	default:
		return time.Unix(ts, 0).Format("January 2, 2006 3:04 PM")
	}
}

// FormatDeadline renders a named deadline for display.
func (req *Request) FormatDeadline(name string) string {
	var ts = req.db.Settings().Deadline(name)
	if ts == 0 {
		return "none"
	}
	return req.FormatDateTime(ts)
}
