package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/auth"
)

var usersTmpl = tmpl(`<h1>Users</h1>

	<table class="table">
		<thead>
			<tr>
				<th>Name</th>
				<th>Roles</th>
				<th>Tags</th>
			</tr>
		</thead>
		<tbody>
			{{ range .Users }}
				<tr>
					<td>{{ UserLink .ID .Name }}</td>
					<td>{{ .Roles }}</td>
					<td>{{ .ContactTags }}</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Create User</h2>

	<form method="post" action="users/create" class="form-inline">
		<div class="form-group">
			<input type="email" class="form-control" name="mail_user" placeholder="Email address">
			<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create user</button>
		</div>
	</form>`)

type usersData struct {
	*context
}

func (data *usersData) Users() ([]auth.DBUser, error) {
	return data.db.UserDB.GetAllUsers(100000, 0) // assuming there are not more than 100k users
}

func users(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.IsChair() {
		return ErrAuth
	}

	return usersTmpl.Execute(w, &usersData{
		context: ctx,
	})
}

func createUser(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.IsChair() {
		return ErrAuth
	}

	if req.Method != http.MethodPost {
		ctx.SeeOther("/users")
		return nil
	}

	newUserMail := strings.TrimSpace(req.PostFormValue("mail_user"))

	if newUserMail == "" {
		return errors.New("missing email address")
	}

	if _, err := ctx.db.UserDB.InsertUser(newUserMail); err != nil {
		return err
	}

	ctx.Success("user %s has been created", newUserMail)
	ctx.SeeOther("/users")
	return nil
}
