package backend

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
)

var tagsTmpl = tmpl(`<h1>Tags of &raquo;{{ .Paper.Title }}&laquo;</h1>

	<table class="table">
		<tbody>
			{{ range .Tags }}
				<tr>
					<td>{{ . }}</td>
					<td>
						<form method="post">
							<input type="hidden" name="tag" value="{{ . }}">
							<button type="submit" class="btn btn-sm btn-danger" name="action" value="remove">Remove</button>
						</form>
					</td>
				</tr>
			{{ else }}
				<tr>
					<td colspan="2">none</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<form method="post" class="form-inline">
		<input type="text" class="form-control" name="tag" placeholder="tag">
		<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="add">Add tag</button>
	</form>`)

type tagsData struct {
	*context
	Paper *core.Paper
}

func (data *tagsData) Tags() []string {
	var tags = []string{}
	for tag := range data.Paper.Tags {
		if data.Paper.CanViewTag(data.Identity, tag) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func tags(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	paperID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	paper, err := ctx.OpenPaper(paperID)
	if err != nil {
		return err
	}

	if !paper.CanViewTags(ctx.Identity) {
		return ErrAuth
	}

	if req.Method == http.MethodPost {

		tag := strings.TrimSpace(req.PostFormValue("tag"))

		if reason := paper.PermSetTag(ctx.Identity, tag); reason != nil {
			return reason
		}

		switch req.PostFormValue("action") {
		case "add":
			err = ctx.db.AddPaperTag(paper, tag)
		case "remove":
			err = ctx.db.RemovePaperTag(paper, tag)
		default:
			return ErrAuth
		}
		if err != nil {
			return err
		}

		ctx.Success("tags have been updated")
		ctx.SeeOther("/paper/%d/tags", paper.ID())
		return nil
	}

	return tagsTmpl.Execute(w, &tagsData{
		context: ctx,
		Paper:   paper,
	})
}
