package backend

import (
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
	"github.com/wansing/confer/util"
	"gitlab.com/golang-commonmark/markdown"
)

var md = markdown.New(markdown.XHTMLOutput(true), markdown.Linkify(true))

var paperTmpl = tmpl(`<h1>{{ .Paper.Title }}</h1>

	{{ if .ConflictNotice }}
		<div class="alert alert-warning" role="alert">
			You are conflicted with this paper.
			{{ if .CanForce }}
				<a href="paper/{{ .Paper.ID }}?forceShow=1">Override the conflict</a>
			{{ end }}
		</div>
	{{ end }}

	<table class="table">
		<tr>
			<th>Status</th>
			<td>{{ .Status }}</td>
		</tr>
		<tr>
			<th>Authors</th>
			<td>
				{{ if eq .AuthorsState 2 }}
					{{ range .Authors }}{{ . }} {{ end }}
				{{ else if eq .AuthorsState 1 }}
					<a href="paper/{{ .Paper.ID }}?forceShow=1">blinded, click to reveal</a>
				{{ else }}
					blinded
				{{ end }}
			</td>
		</tr>
		{{ if .Tags }}
			<tr>
				<th>Tags</th>
				<td>
					{{ range .Tags }}
						<span class="alert-inline alert-secondary">{{ . }}</span>
					{{ end }}
					{{ if .CanEditTags }}
						<a href="paper/{{ .Paper.ID }}/tags">edit</a>
					{{ end }}
				</td>
			</tr>
		{{ end }}
		{{ if .HasPDF }}
			<tr>
				<th>Document</th>
				<td>
					{{ if .CanViewPDF }}
						<a href="paper/{{ .Paper.ID }}/pdf">pdf</a>
					{{ else }}
						not visible to you
					{{ end }}
				</td>
			</tr>
		{{ end }}
		{{ if .ShowDecision }}
			<tr>
				<th>Decision</th>
				<td>{{ .Decision }}</td>
			</tr>
		{{ end }}
		{{ if .ShowManager }}
			<tr>
				<th>Manager</th>
				<td>{{ .ManagerName }}</td>
			</tr>
		{{ end }}
		{{ if .ShowLead }}
			<tr>
				<th>Discussion lead</th>
				<td>{{ .LeadName }}</td>
			</tr>
		{{ end }}
		{{ if .ShowShepherd }}
			<tr>
				<th>Shepherd</th>
				<td>{{ .ShepherdName }}</td>
			</tr>
		{{ end }}
	</table>

	<h2>Abstract</h2>

	{{ .Abstract }}

	{{ if .CanUpdate }}
		<h2>Edit</h2>
		<form method="post">
			<div class="form-group">
				<label>Title</label>
				<input type="text" class="form-control" name="title" value="{{ .Paper.Title }}">
			</div>
			<div class="form-group">
				<label>Abstract</label>
				<textarea class="form-control" name="abstract" rows="8">{{ .Paper.Abstract }}</textarea>
			</div>
			<button type="submit" class="btn btn-primary" name="action" value="update">Save</button>
		</form>
		<form method="post" action="paper/{{ .Paper.ID }}/pdf" enctype="multipart/form-data" class="form-inline mt-3">
			<input type="file" class="form-control-file" name="pdf" accept="application/pdf">
			<button type="submit" class="btn btn-secondary mx-sm-3">Upload document</button>
		</form>
	{{ end }}

	<div class="mt-3">
		{{ if .CanFinalize }}
			<form method="post" style="display: inline;">
				<button type="submit" class="btn btn-primary" name="action" value="finalize">Submit paper</button>
			</form>
		{{ end }}
		{{ if .CanWithdraw }}
			<form method="post" style="display: inline;">
				<button type="submit" class="btn btn-danger" name="action" value="withdraw">Withdraw</button>
			</form>
		{{ end }}
		{{ if .CanRevive }}
			<form method="post" style="display: inline;">
				<button type="submit" class="btn btn-secondary" name="action" value="revive">Revive</button>
			</form>
		{{ end }}
		{{ if .CanReview }}
			<a class="btn btn-primary" href="paper/{{ .Paper.ID }}/review/{{ .Identity.ID }}">Write review</a>
		{{ end }}
		{{ if .CanAdminister }}
			<a class="btn btn-secondary" href="paper/{{ .Paper.ID }}/reviews">Manage reviews</a>
			<a class="btn btn-secondary" href="paper/{{ .Paper.ID }}/conflicts">Conflicts</a>
		{{ end }}
	</div>

	{{ if .CanSetDecision }}
		<h2>Decision</h2>
		<form method="post" class="form-inline">
			<select class="form-control" name="outcome">
				<option value="0">undecided</option>
				<option value="1">accept</option>
				<option value="-1">reject</option>
			</select>
			<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="decide">Set decision</button>
		</form>
	{{ end }}

	{{ if .Reviews }}
		<h2>Reviews</h2>
		<table class="table">
			<thead>
				<tr>
					<th>Reviewer</th>
					<th>Type</th>
					<th>Status</th>
					{{ range .FieldNames }}
						<th>{{ . }}</th>
					{{ end }}
				</tr>
			</thead>
			<tbody>
				{{ range .Reviews }}
					<tr>
						<td>{{ .Reviewer }}</td>
						<td>{{ .Type }}</td>
						<td>{{ .Status }}</td>
						{{ range .Fields }}
							<td>{{ . }}</td>
						{{ end }}
					</tr>
				{{ end }}
			</tbody>
		</table>
	{{ end }}`)

type reviewRow struct {
	Reviewer string
	Type     string
	Status   string
	Fields   []string // aligned with FieldNames, empty where not visible
}

type paperData struct {
	*context
	Paper    *core.Paper
	Abstract template.HTML
	Reviews  []reviewRow
}

func (data *paperData) rights() *core.PaperRights {
	return data.Paper.Rights(data.Identity)
}

func (data *paperData) ConflictNotice() bool {
	var r = data.rights()
	return r.ConflictType.IsConflicted() && !r.Forced
}

func (data *paperData) CanForce() bool {
	var r = data.rights()
	return r.AllowAdminister && !r.Forced
}

func (data *paperData) Status() string {
	switch {
	case data.Paper.Withdrawn():
		return "withdrawn"
	case data.Paper.Submitted():
		return "submitted"
	default:
		return "draft"
	}
}

func (data *paperData) AuthorsState() int {
	return data.rights().ViewAuthorsState
}

// Authors returns the author names, sorted by contact id.
func (data *paperData) Authors() []string {

	conflicts, err := data.db.ConflictDB.GetConflicts(data.Paper.ID())
	if err != nil {
		return nil
	}

	var ids = []int{}
	for contactID, conflict := range conflicts {
		if core.Conflict(conflict).IsAuthor() {
			ids = append(ids, contactID)
		}
	}
	sort.Ints(ids)

	var names = []string{}
	for _, contactID := range ids {
		if u, err := data.db.UserDB.GetUser(contactID); err == nil {
			names = append(names, u.Name())
		}
	}
	return names
}

func (data *paperData) Tags() []string {
	var tags = []string{}
	for tag := range data.Paper.Tags {
		if data.Paper.CanViewTag(data.Identity, tag) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func (data *paperData) CanEditTags() bool {
	return data.rights().CanAdminister
}

func (data *paperData) HasPDF() bool {
	return data.docs.Has(data.Paper.ID())
}

func (data *paperData) CanViewPDF() bool {
	return data.Paper.CanViewPDF(data.Identity)
}

func (data *paperData) ShowDecision() bool {
	return data.Paper.Decided() && data.Paper.CanViewDecision(data.Identity)
}

func (data *paperData) Decision() string {
	if data.Paper.Accepted() {
		return "accepted"
	}
	return "rejected"
}

func (data *paperData) ShowManager() bool {
	return data.Paper.ManagerID() != 0 && data.Paper.CanViewManager(data.Identity)
}

func (data *paperData) ShowLead() bool {
	return data.Paper.LeadID() != 0 && data.Paper.CanViewLead(data.Identity)
}

func (data *paperData) ShowShepherd() bool {
	return data.Paper.ShepherdID() != 0 && data.Paper.CanViewShepherd(data.Identity)
}

func (data *paperData) userName(contactID int) string {
	if u, err := data.db.UserDB.GetUser(contactID); err == nil {
		return u.Name()
	}
	return strconv.Itoa(contactID)
}

func (data *paperData) ManagerName() string {
	return data.userName(data.Paper.ManagerID())
}

func (data *paperData) LeadName() string {
	return data.userName(data.Paper.LeadID())
}

func (data *paperData) ShepherdName() string {
	return data.userName(data.Paper.ShepherdID())
}

func (data *paperData) CanUpdate() bool {
	return data.Paper.CanUpdatePaper(data.Identity)
}

func (data *paperData) CanFinalize() bool {
	return !data.Paper.Submitted() && data.Paper.CanFinalizePaper(data.Identity)
}

func (data *paperData) CanWithdraw() bool {
	return !data.Paper.Withdrawn() && data.Paper.CanWithdrawPaper(data.Identity)
}

func (data *paperData) CanRevive() bool {
	return data.Paper.Withdrawn() && data.Paper.CanRevivePaper(data.Identity)
}

func (data *paperData) CanReview() bool {
	return data.Paper.CanReview(data.Identity)
}

func (data *paperData) CanAdminister() bool {
	return data.rights().CanAdminister
}

func (data *paperData) CanSetDecision() bool {
	return data.Paper.CanSetDecision(data.Identity)
}

func (data *paperData) FieldNames() []string {
	var names = []string{}
	for _, field := range core.ReviewForm {
		names = append(names, field.Name)
	}
	return names
}

func paper(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	paperID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	paper, err := ctx.OpenPaper(paperID)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {
		return paperAction(req, ctx, paper)
	}

	abstract, err := util.SanitizeHTML(strings.NewReader(md.RenderToString([]byte(paper.Abstract()))))
	if err != nil {
		return err
	}

	var reviews = []reviewRow{}
	if dbReviews, err := ctx.db.ReviewDB.GetReviews(paperID); err == nil {
		for _, dbReview := range dbReviews {
			var rev = &core.Review{DBReview: dbReview}
			if !paper.CanViewReview(ctx.Identity, rev) {
				continue
			}
			var row = reviewRow{
				Reviewer: "anonymous",
				Type:     rev.Type().String(),
				Status:   "draft",
			}
			if paper.CanViewReviewIdentity(ctx.Identity, rev) {
				if u, err := ctx.db.UserDB.GetUser(rev.ContactID()); err == nil {
					row.Reviewer = u.Name()
				}
			}
			if rev.Submitted() {
				row.Status = "submitted"
			}
			for _, field := range core.ReviewForm {
				var value string
				if rev.Submitted() && paper.CanViewReviewField(ctx.Identity, rev, field) {
					value = rev.FieldValue(field)
				}
				row.Fields = append(row.Fields, value)
			}
			reviews = append(reviews, row)
		}
	}

	return paperTmpl.Execute(w, &paperData{
		context:  ctx,
		Paper:    paper,
		Abstract: template.HTML(abstract),
		Reviews:  reviews,
	})
}

func paperAction(req *http.Request, ctx *context, paper *core.Paper) error {

	switch req.PostFormValue("action") {

	case "update":
		if reason := paper.PermUpdatePaper(ctx.Identity); reason != nil {
			return reason
		}
		// title and abstract are stored through the paper row
		if err := ctx.db.UpdatePaper(paper, req.PostFormValue("title"), req.PostFormValue("abstract")); err != nil {
			return err
		}
		ctx.Success("paper has been updated")

	case "finalize":
		if reason := paper.PermFinalizePaper(ctx.Identity); reason != nil {
			return reason
		}
		if err := ctx.db.FinalizePaper(paper); err != nil {
			return err
		}
		ctx.Success("paper has been submitted")

	case "withdraw":
		if reason := paper.PermWithdrawPaper(ctx.Identity); reason != nil {
			return reason
		}
		if err := ctx.db.WithdrawPaper(paper); err != nil {
			return err
		}
		ctx.Success("paper has been withdrawn")

	case "revive":
		if reason := paper.PermRevivePaper(ctx.Identity); reason != nil {
			return reason
		}
		if err := ctx.db.RevivePaper(paper); err != nil {
			return err
		}
		ctx.Success("paper has been revived")

	case "decide":
		if !paper.CanSetDecision(ctx.Identity) {
			return ErrAuth
		}
		outcome, err := strconv.Atoi(req.PostFormValue("outcome"))
		if err != nil {
			return err
		}
		if err := ctx.db.SetOutcome(paper, outcome); err != nil {
			return err
		}
		ctx.Success("decision has been set")

	default:
		return ErrAuth
	}

	ctx.SeeOther("/paper/%d", paper.ID())
	return nil
}
