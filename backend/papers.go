package backend

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
	"github.com/wansing/confer/util"
)

const papersPerPage = 50

var papersTmpl = tmpl(`<h1>Papers</h1>

	<div class="table-responsive">
		<table class="table">
			<thead>
				<tr>
					<th>ID</th>
					<th>Title</th>
					<th>Status</th>
					<th></th>
				</tr>
			</thead>
			<tbody>
				{{ range .Papers }}
					<tr>
						<td>{{ .ID }}</td>
						<td>{{ PaperLink . }}</td>
						<td>{{ $.Status . }}</td>
						<td>{{ $.Badges . }}</td>
					</tr>
				{{ else }}
					<tr>
						<td colspan="4">none</td>
					</tr>
				{{ end }}
			</tbody>
		</table>
	</div>
	<nav>
		<ul class="pagination justify-content-center">
			{{ range .PageLinks }}
				{{ . }}
			{{ end }}
		</ul>
	</nav>`)

type papersData struct {
	*context
	page   int
	papers []*core.Paper
}

func (data *papersData) Papers() []*core.Paper {
	return data.papers
}

func (data *papersData) Status(p *core.Paper) string {
	switch {
	case p.Withdrawn():
		return "withdrawn"
	case p.Accepted() && p.CanViewDecision(data.Identity):
		return "accepted"
	case p.Decided() && p.CanViewDecision(data.Identity):
		return "rejected"
	case p.Submitted():
		return "submitted"
	default:
		return "draft"
	}
}

func (data *papersData) Badges(p *core.Paper) template.HTML {
	var r string
	var rights = p.Rights(data.Identity)
	if rights.ActAuthor {
		r += `<span class="alert-inline alert-info">author</span> `
	}
	if p.ReviewOf(data.Identity) != nil {
		r += `<span class="alert-inline alert-secondary">reviewer</span> `
	}
	if rights.CanAdminister {
		r += `<span class="alert-inline alert-warning">admin</span> `
	}
	if rights.ConflictType.IsConflicted() {
		r += `<span class="alert-inline alert-danger">conflict</span> `
	}
	return template.HTML(r)
}

func (data *papersData) PageLinks() []template.HTML {

	pagesTotal := 1

	if count, err := data.db.PaperDB.CountPapers(); err == nil {
		pagesTotal = int(math.Ceil(float64(count) / papersPerPage))
	}

	return util.PageLinks(
		data.page,
		pagesTotal,
		func(page int, name string) string {
			return fmt.Sprintf(`<li class="page-item"><a class="page-link" href="papers/%d">%s</a></li>`, page, name)
		},
		func(page int, name string) string {
			return fmt.Sprintf(`<li class="page-item active"><span class="page-link">%d</span></li>`, page)
		},
	)
}

func papersFirstPage(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	return papersPage(w, ctx, 1)
}

func papers(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	page, err := strconv.Atoi(params.ByName("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return papersPage(w, ctx, page)
}

func papersPage(w http.ResponseWriter, ctx *context, page int) error {

	dbPapers, err := ctx.db.PaperDB.GetAllPapers(papersPerPage, (page-1)*papersPerPage)
	if err != nil {
		return err
	}

	// visibility is checked per paper, hidden ones are skipped
	var visible = []*core.Paper{}
	for _, dbPaper := range dbPapers {
		paper, err := ctx.db.NewPaper(dbPaper.ID())
		if err != nil {
			continue
		}
		if paper.CanViewPaper(ctx.Identity) {
			visible = append(visible, paper)
		}
	}

	return papersTmpl.Execute(w, &papersData{
		context: ctx,
		page:    page,
		papers:  visible,
	})
}
