package backend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/auth"
)

var userTmpl = tmpl(`<h1>User &raquo;{{ .Selected.Name }}&laquo;</h1>

	<table class="table">
		<tr>
			<th>Roles</th>
			<td>{{ .Selected.Roles }}</td>
		</tr>
		<tr>
			<th>Contact tags</th>
			<td><code>{{ .Selected.ContactTags }}</code></td>
		</tr>
	</table>

	{{ if .IsChair }}

		<h2>Roles</h2>

		<form method="post">
			<input type="hidden" name="form" value="roles">
			<div class="form-check">
				<input type="checkbox" class="form-check-input" name="role_pc" id="role_pc" {{ if .HasPC }}checked{{ end }}>
				<label class="form-check-label" for="role_pc">PC member</label>
			</div>
			<div class="form-check">
				<input type="checkbox" class="form-check-input" name="role_admin" id="role_admin" {{ if .HasAdmin }}checked{{ end }}>
				<label class="form-check-label" for="role_admin">Administrator</label>
			</div>
			<div class="form-check">
				<input type="checkbox" class="form-check-input" name="role_chair" id="role_chair" {{ if .HasChair }}checked{{ end }}>
				<label class="form-check-label" for="role_chair">Chair</label>
			</div>
			<button type="submit" class="btn btn-primary mt-2">Save roles</button>
		</form>

		<h2>Contact tags</h2>

		<form method="post" class="form-inline">
			<input type="hidden" name="form" value="tags">
			<input type="text" class="form-control" name="tags" value="{{ .Selected.ContactTags }}" placeholder="heavy track1#2.5">
			<button type="submit" class="btn btn-primary mx-sm-3">Save tags</button>
		</form>

		<h2>Author-view link</h2>

		<form method="post" class="form-inline">
			<input type="hidden" name="form" value="authorview">
			<input type="number" class="form-control" name="paper" placeholder="paper id">
			<button type="submit" class="btn btn-secondary mx-sm-3">Grant author view</button>
		</form>

	{{ end }}

	<h2>Change Password</h2>

	<form method="post">

		<input type="hidden" name="form" value="password">

		{{ if not .IsChair }}
			<div class="form-group row">
				<label class="col-sm-6 col-form-label">Current password</label>
				<div class="col-sm-6">
					<input type="password" class="form-control" name="old">
				</div>
			</div>
		{{ end }}

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">New password</label>
			<div class="col-sm-6">
				<input type="password" class="form-control" name="new1">
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">Repeat new password</label>
			<div class="col-sm-6">
				<input type="password" class="form-control" name="new2">
			</div>
		</div>

		<button type="submit" class="btn btn-primary" name="submit_add">Change password</button>

	</form>`)

type userData struct {
	*context
	Selected auth.DBUser
}

func (data *userData) HasPC() bool {
	return data.Selected.Roles().Has(auth.PC)
}

func (data *userData) HasAdmin() bool {
	return data.Selected.Roles().Has(auth.Admin)
}

func (data *userData) HasChair() bool {
	return data.Selected.Roles().Has(auth.Chair)
}

func user(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	selectedID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	selected, err := ctx.db.UserDB.GetUser(selectedID)
	if err != nil {
		return err
	}

	if !(ctx.IsChair() || selected.ID() == ctx.Identity.ID()) {
		return ErrAuth
	}

	if req.Method == http.MethodPost {
		return userAction(req, ctx, selected)
	}

	return userTmpl.Execute(w, &userData{
		context:  ctx,
		Selected: selected,
	})
}

func userAction(req *http.Request, ctx *context, selected auth.DBUser) error {

	switch req.PostFormValue("form") {

	case "roles":
		if !ctx.IsChair() {
			return ErrAuth
		}
		var roles auth.Role
		if req.PostFormValue("role_pc") != "" {
			roles |= auth.PC
		}
		if req.PostFormValue("role_admin") != "" {
			roles |= auth.Admin
		}
		if req.PostFormValue("role_chair") != "" {
			roles |= auth.Chair
		}
		if err := ctx.db.SetRoles(selected, roles); err != nil {
			return err
		}
		ctx.Success("roles of %s have been changed", selected.Name())

	case "tags":
		if !ctx.IsChair() {
			return ErrAuth
		}
		if err := ctx.db.SetContactTags(selected, auth.ParseContactTags(req.PostFormValue("tags"))); err != nil {
			return err
		}
		ctx.Success("tags of %s have been changed", selected.Name())

	case "authorview":
		if !ctx.IsChair() {
			return ErrAuth
		}
		paperID, err := strconv.Atoi(req.PostFormValue("paper"))
		if err != nil {
			return err
		}
		if err := ctx.db.GrantCapability(selected.ID(), auth.AuthorViewKey(paperID), 1); err != nil {
			return err
		}
		capText := auth.EncodeCapability([]byte(ctx.db.HMACSecret), auth.AuthorViewKey(paperID), 1)
		ctx.Success("author-view link: paper/%d?cap=%s", paperID, capText)

	case "password":
		var new1 = req.PostFormValue("new1")
		var new2 = req.PostFormValue("new2")

		if new1 != new2 {
			return errors.New("new passwords don't match")
		}

		if strings.TrimSpace(new1) == "" {
			return errors.New("new password is empty") // we could use zxcvbn instead, or leave it to the UserDB
		}

		if ctx.IsChair() {
			if err := ctx.db.SetPassword(selected, new1); err != nil {
				return err
			}
		} else {
			if err := ctx.db.UserDB.ChangePassword(selected, req.PostFormValue("old"), new1); err != nil {
				return err
			}
		}

		ctx.Success("password of %s has been changed", selected.Name())

	default:
		return ErrAuth
	}

	ctx.SeeOther("/user/%d", selected.ID())
	return nil
}
