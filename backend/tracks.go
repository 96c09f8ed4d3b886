package backend

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
)

var tracksTmpl = tmpl(`<h1>Tracks</h1>

	<p>
		Papers fall into the first track whose tag they carry, or into the
		default track <code>_</code>. A permission like <code>+pctag</code>
		requires the contact tag, <code>-pctag</code> forbids it.
	</p>

	<table class="table">
		<thead>
			<tr>
				<th>Track tag</th>
				<th>Right</th>
				<th>Permission</th>
				<th></th>
			</tr>
		</thead>
		<tbody>
			{{ range .Rules }}
				<tr>
					<td><code>{{ .Tag }}</code></td>
					<td>{{ .Right }}</td>
					<td><code>{{ .Perm }}</code></td>
					<td>
						<form method="post">
							<input type="hidden" name="tag" value="{{ .Tag }}">
							<button type="submit" class="btn btn-sm btn-danger" name="action" value="remove">Remove track</button>
						</form>
					</td>
				</tr>
			{{ else }}
				<tr>
					<td colspan="4">none</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Add rule</h2>

	<form method="post" class="form-inline">
		<input type="text" class="form-control" name="tag" placeholder="track tag">
		<select class="form-control mx-sm-3" name="right">
			{{ range .Rights }}
				<option value="{{ . }}">{{ . }}</option>
			{{ end }}
		</select>
		<input type="text" class="form-control" name="perm" placeholder="+tag or -tag">
		<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="add">Add</button>
	</form>`)

type tracksData struct {
	*context
	Rules []core.TrackRule
}

func (data *tracksData) Rights() []string {
	var names = make([]string, 0, core.NumTrackRights)
	for r := core.TrackRight(0); r < core.NumTrackRights; r++ {
		names = append(names, r.String())
	}
	return names
}

func tracks(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.IsChair() {
		return ErrAuth
	}

	if req.Method == http.MethodPost {

		tag := strings.TrimSpace(req.PostFormValue("tag"))

		switch req.PostFormValue("action") {

		case "add":
			right, err := core.ParseTrackRight(req.PostFormValue("right"))
			if err != nil {
				return err
			}
			perm, err := core.ParseTrackPerm(req.PostFormValue("perm"))
			if err != nil {
				return err
			}
			if err := ctx.db.AddTrackRule(tag, right, perm); err != nil {
				return err
			}
			ctx.Success("track rule has been added")

		case "remove":
			if err := ctx.db.RemoveTrack(tag); err != nil {
				return err
			}
			ctx.Success("track %s has been removed", tag)

		default:
			return ErrAuth
		}

		ctx.SeeOther("/tracks")
		return nil
	}

	rules, err := ctx.db.TrackDB.GetTrackRules()
	if err != nil {
		return err
	}

	return tracksTmpl.Execute(w, &tracksData{
		context: ctx,
		Rules:   rules,
	})
}
