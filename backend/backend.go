package backend

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
	"github.com/wansing/confer/filestore"
)

var ErrAuth = errors.New("unauthorized")

// we need the CoreDB in handlers and template funcs
type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
	docs   *filestore.Store
}

func (ctx *context) UsersWriteable() bool {
	return ctx.db.UserDB.Writeable()
}

func (ctx *context) IsChair() bool {
	return ctx.Identity.Roles().Privileged()
}

func middleware(db *core.CoreDB, docs *filestore.Store, prefix string, requireLoggedIn bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		// similar to the code in func main

		var request = db.NewRequest(w, req)

		var ctx = &context{
			Prefix:  prefix + "/",
			Request: request,
			db:      db,
			docs:    docs,
		}
		defer ctx.Cleanup()

		// capability and review token bearers pass without an account
		if requireLoggedIn && !ctx.LoggedIn() &&
			ctx.Identity.ReviewToken() == 0 && len(ctx.Identity.Capabilities()) == 0 {
			ctx.SeeOther("/login")
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			// probably no template has been executed, so execute error template
			errorTmpl.Execute(w, struct {
				*context
				Err error
			}{
				context: ctx,
				Err:     err,
			})
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

func NewRouter(db *core.CoreDB, docs *filestore.Store, prefix string) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	router.GET("/", middleware(db, docs, prefix, false, root))
	GETAndPOST("/login", middleware(db, docs, prefix, false, login))

	// private
	router.GET("/logout", middleware(db, docs, prefix, true, logout))
	router.GET("/papers", middleware(db, docs, prefix, true, papersFirstPage))
	router.GET("/papers/:page", middleware(db, docs, prefix, true, papers))
	GETAndPOST("/paper/:id", middleware(db, docs, prefix, true, paper))
	GETAndPOST("/paper/:id/conflicts", middleware(db, docs, prefix, true, conflicts))
	GETAndPOST("/paper/:id/pdf", middleware(db, docs, prefix, true, pdf))
	GETAndPOST("/paper/:id/review/:contact", middleware(db, docs, prefix, true, review))
	GETAndPOST("/paper/:id/reviews", middleware(db, docs, prefix, true, reviews))
	GETAndPOST("/paper/:id/tags", middleware(db, docs, prefix, true, tags))
	GETAndPOST("/submit", middleware(db, docs, prefix, true, submit))

	// chair only
	GETAndPOST("/settings", middleware(db, docs, prefix, true, settings))
	GETAndPOST("/tracks", middleware(db, docs, prefix, true, tracks))
	router.GET("/users", middleware(db, docs, prefix, true, users))
	GETAndPOST("/users/create", middleware(db, docs, prefix, true, createUser))
	GETAndPOST("/user/:id", middleware(db, docs, prefix, true, user))

	return router
}

func root(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	if ctx.LoggedIn() || ctx.Identity.ReviewToken() != 0 {
		ctx.SeeOther("/papers")
	} else {
		ctx.SeeOther("/login")
	}
	return nil
}

func logout(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	ctx.Logout()
	ctx.Success("Goodbye")
	ctx.SeeOther("/login")
	return nil
}

func tmpl(text string) *template.Template {
	t := template.Must(baseTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var baseTmpl = template.Must(template.New("base").Funcs(
	template.FuncMap{
		"PaperLink": func(p *core.Paper) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="paper/%d">%s</a>`, p.ID(), template.HTMLEscapeString(p.Title())))
		},
		"UserLink": func(id int, name string) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="user/%d">%s</a>`, id, template.HTMLEscapeString(name)))
		},
	},
).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<base href="{{.Prefix}}">
		<link rel="stylesheet" type="text/css" href="/assets/bootstrap-4.4.1.min.css">
		<meta charset="utf-8">
		<title>Conference</title>

		<style>

			/* bootstrap enhancements */

			.alert-inline {
				display: inline-block;
				border: 1px solid transparent;
				border-radius: .2rem;
				padding: .15rem .3rem;
			}

			.bg-light, .table-light, .table-light > td, .table-light > th {
				background-color: #f4f5f6 !important;
			}

			.col-form-label {
				text-align: right;
			}

			/* html tags */

			body {
				padding-bottom: 1rem;
			}

			h1 {
				font-size: 1.5rem !important;
				margin: 1rem 0 0.7rem !important;
			}

			h2 {
				font-size: 1.3rem !important;
				margin: 0.2rem 0 0.5rem !important;
			}

			table {
				margin-top: 0.5rem;
				border-bottom: 1px solid #dee2e6;
			}

		</style>
	</head>
	<body>

		{{ if .LoggedIn }}

			<nav class="navbar navbar-expand-md bg-light">
				<ul class="navbar-nav">
					<li class="nav-item">
						<a class="nav-link" href="papers">Papers</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="submit">Submit</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="user/{{ .Identity.ID }}">{{ .Identity.Name }}</a>
					</li>

					{{ if .IsChair }}

						<li class="nav-item">
							<a class="nav-link" href="tracks">Tracks</a>
						</li>

						<li class="nav-item">
							<a class="nav-link" href="settings">Settings</a>
						</li>

						{{ if .UsersWriteable }}
							<li class="nav-item">
								<a class="nav-link" href="users">Users</a>
							</li>
						{{ end }}

					{{ end }}

					<li class="nav-item">
						<a class="nav-link" href="logout">Logout</a>
					</li>
				</ul>
			</nav>

		{{ end }}

		<div class="container pt-3">
			<div class="starter-template">
				{{ .RenderNotifications }}
				{{ template "content" . }}
			</div>
		</div>
	</body>
</html>`))
