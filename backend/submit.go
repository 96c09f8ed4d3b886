package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
)

var submitTmpl = tmpl(`<h1>Submit a paper</h1>

	<form method="post">
		<div class="form-group">
			<label>Title</label>
			<input type="text" class="form-control" name="title" required>
		</div>
		<div class="form-group">
			<label>Abstract</label>
			<textarea class="form-control" name="abstract" rows="8"></textarea>
		</div>
		{{ if .BlindOptional }}
			<div class="form-check form-group">
				<input type="checkbox" class="form-check-input" name="blind" id="blind">
				<label class="form-check-label" for="blind">Anonymous submission</label>
			</div>
		{{ end }}
		<button type="submit" class="btn btn-primary">Register paper</button>
	</form>`)

type submitData struct {
	*context
}

func (data *submitData) BlindOptional() bool {
	return data.db.Settings().Blindness == core.BlindOptional
}

func submit(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.LoggedIn() {
		return ErrAuth
	}

	if ctx.db.Settings().DeadlinePassed(core.DeadlineSubReg) {
		return errors.New("the registration deadline has passed")
	}

	if req.Method == http.MethodPost {

		title := strings.TrimSpace(req.PostFormValue("title"))
		if title == "" {
			return errors.New("missing title")
		}

		blind := req.PostFormValue("blind") != ""
		if ctx.db.Settings().Blindness != core.BlindOptional {
			blind = false
		}

		paper, err := ctx.db.CreatePaper(title, req.PostFormValue("abstract"), blind, ctx.Identity.ID())
		if err != nil {
			return err
		}

		ctx.Success("paper %d has been registered", paper.ID())
		ctx.SeeOther("/paper/%d", paper.ID())
		return nil
	}

	return submitTmpl.Execute(w, &submitData{
		context: ctx,
	})
}
