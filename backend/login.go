package backend

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var ErrLogin = errors.New("wrong username or password")

var loginTmpl = tmpl(`<h1>Login</h1>
	<form method="post" style="max-width: 20rem; margin: auto;">
		<div class="form-group">
			<label>E-Mail</label>
			<input type="text" class="form-control" name="email" value="{{ .Email }}" autofocus>
		</div>
		<div class="form-group">
			<label>Password</label>
			<input type="password" class="form-control" name="password">
		</div>
		<div class="form-group">
			<button type="submit" class="btn btn-primary" name="login">Login</button>
		</div>
		<hr>
		<div class="form-group">
			<label>Or enter a review token</label>
			<input type="text" class="form-control" name="reviewtoken" placeholder="R...">
		</div>
		<div class="form-group">
			<button type="submit" class="btn btn-secondary" name="token">Continue with token</button>
		</div>
	</form>`)

type loginData struct {
	*context
	Email string
}

func login(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var email string

	if req.Method == http.MethodPost {

		if token := req.PostFormValue("reviewtoken"); token != "" {
			if err := ctx.LoginToken(token); err == nil {
				ctx.Success("Review token accepted")
				ctx.SeeOther("/papers")
				return nil
			}
			ctx.Danger(errors.New("unknown review token"))
		} else {
			email = req.PostFormValue("email")
			password := req.PostFormValue("password")

			err := ctx.Login(email, password)
			if err == nil {
				ctx.SeeOther("/papers")
				return nil
			}
			ctx.Danger(ErrLogin)
			// keep POST data for email field
		}
	}

	return loginTmpl.Execute(w, &loginData{
		context: ctx,
		Email:   email,
	})
}
