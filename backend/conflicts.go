package backend

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
)

var conflictsTmpl = tmpl(`<h1>Conflicts of &raquo;{{ .Paper.Title }}&laquo;</h1>

	<table class="table">
		<thead>
			<tr>
				<th>Contact</th>
				<th>Level</th>
				<th></th>
			</tr>
		</thead>
		<tbody>
			{{ range .Conflicts }}
				<tr>
					<td>{{ .Name }}</td>
					<td>{{ .Level }}</td>
					<td>
						<form method="post">
							<input type="hidden" name="contact" value="{{ .ContactID }}">
							<button type="submit" class="btn btn-sm btn-danger" name="conflict" value="0">Remove</button>
						</form>
					</td>
				</tr>
			{{ else }}
				<tr>
					<td colspan="3">none</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Add or change</h2>

	<form method="post" class="form-inline">
		<input type="number" class="form-control" name="contact" placeholder="contact id">
		<select class="form-control mx-sm-3" name="conflict">
			<option value="1">pinned unconflicted</option>
			<option value="2" selected>personal</option>
			<option value="32">author</option>
		</select>
		<button type="submit" class="btn btn-primary">Set</button>
	</form>`)

type conflictRow struct {
	ContactID int
	Name      string
	Level     string
}

type conflictsData struct {
	*context
	Paper     *core.Paper
	Conflicts []conflictRow
}

func conflicts(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	paperID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	paper, err := ctx.OpenPaper(paperID)
	if err != nil {
		return err
	}

	if !paper.CanViewConflicts(ctx.Identity) {
		return ErrAuth
	}

	if req.Method == http.MethodPost {

		if !paper.Rights(ctx.Identity).CanAdminister {
			return ErrAuth
		}

		contactID, err := strconv.Atoi(req.PostFormValue("contact"))
		if err != nil {
			return err
		}
		conflict, err := strconv.Atoi(req.PostFormValue("conflict"))
		if err != nil {
			return err
		}

		if err := ctx.db.SetConflict(paper, contactID, core.Conflict(conflict)); err != nil {
			return err
		}

		ctx.Success("conflict has been updated")
		ctx.SeeOther("/paper/%d/conflicts", paper.ID())
		return nil
	}

	conflicts, err := ctx.db.ConflictDB.GetConflicts(paperID)
	if err != nil {
		return err
	}

	var ids = []int{}
	for contactID := range conflicts {
		ids = append(ids, contactID)
	}
	sort.Ints(ids)

	var rows = []conflictRow{}
	for _, contactID := range ids {
		var row = conflictRow{
			ContactID: contactID,
			Name:      strconv.Itoa(contactID),
			Level:     core.Conflict(conflicts[contactID]).String(),
		}
		if u, err := ctx.db.UserDB.GetUser(contactID); err == nil {
			row.Name = u.Name()
		}
		rows = append(rows, row)
	}

	return conflictsTmpl.Execute(w, &conflictsData{
		context:   ctx,
		Paper:     paper,
		Conflicts: rows,
	})
}
