package backend

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/auth"
	"github.com/wansing/confer/core"
)

var reviewsTmpl = tmpl(`<h1>Reviews of &raquo;{{ .Paper.Title }}&laquo;</h1>

	<table class="table">
		<thead>
			<tr>
				<th>Reviewer</th>
				<th>Type</th>
				<th>Round</th>
				<th>Status</th>
				<th>Token</th>
				<th>Accept link</th>
				<th></th>
			</tr>
		</thead>
		<tbody>
			{{ range .Reviews }}
				<tr>
					<td>{{ .Reviewer }}</td>
					<td>{{ .Type }}</td>
					<td>{{ .Round }}</td>
					<td>{{ .Status }}</td>
					<td>
						{{ if .Token }}
							<code>{{ .Token }}</code>
						{{ else }}
							<form method="post">
								<input type="hidden" name="contact" value="{{ .ContactID }}">
								<button type="submit" class="btn btn-sm btn-secondary" name="action" value="token">Issue token</button>
							</form>
						{{ end }}
					</td>
					<td><code>{{ .AcceptLink }}</code></td>
					<td>
						<form method="post">
							<input type="hidden" name="contact" value="{{ .ContactID }}">
							<button type="submit" class="btn btn-sm btn-danger" name="action" value="delete">Delete</button>
						</form>
					</td>
				</tr>
			{{ else }}
				<tr>
					<td colspan="7">none</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Assign review</h2>

	<form method="post" class="form-inline">
		<input type="number" class="form-control" name="contact" placeholder="contact id">
		<select class="form-control mx-sm-3" name="type">
			<option value="1">external</option>
			<option value="2" selected>PC</option>
			<option value="3">secondary</option>
			<option value="4">primary</option>
			<option value="5">meta</option>
		</select>
		<input type="number" class="form-control" name="round" value="0">
		<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="assign">Assign</button>
	</form>`)

type assignmentRow struct {
	ContactID  int
	Reviewer   string
	Type       string
	Round      int
	Status     string
	Token      string
	AcceptLink string
}

type reviewsData struct {
	*context
	Paper   *core.Paper
	Reviews []assignmentRow
}

func reviews(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	paperID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	paper, err := ctx.OpenPaper(paperID)
	if err != nil {
		return err
	}

	if !paper.Rights(ctx.Identity).CanAdminister {
		return ErrAuth
	}

	if req.Method == http.MethodPost {
		return reviewsAction(req, ctx, paper)
	}

	dbReviews, err := ctx.db.ReviewDB.GetReviews(paperID)
	if err != nil {
		return err
	}

	var rows = []assignmentRow{}
	for _, dbReview := range dbReviews {
		var rev = &core.Review{DBReview: dbReview}
		var row = assignmentRow{
			ContactID: rev.ContactID(),
			Reviewer:  strconv.Itoa(rev.ContactID()),
			Type:      rev.Type().String(),
			Round:     rev.Round(),
			Status:    "draft",
			AcceptLink: fmt.Sprintf("paper/%d?cap=%s", paper.ID(),
				auth.EncodeCapability([]byte(ctx.db.HMACSecret), auth.ReviewAcceptKey(paper.ID()), rev.ContactID())),
		}
		if u, err := ctx.db.UserDB.GetUser(rev.ContactID()); err == nil {
			row.Reviewer = u.Name()
		}
		if rev.Submitted() {
			row.Status = "submitted"
		}
		if token := rev.Token(); token != 0 {
			row.Token = auth.FormatReviewToken(token)
		}
		rows = append(rows, row)
	}

	return reviewsTmpl.Execute(w, &reviewsData{
		context: ctx,
		Paper:   paper,
		Reviews: rows,
	})
}

func reviewsAction(req *http.Request, ctx *context, paper *core.Paper) error {

	contactID, err := strconv.Atoi(req.PostFormValue("contact"))
	if err != nil {
		return err
	}

	switch req.PostFormValue("action") {

	case "assign":
		typ, err := strconv.Atoi(req.PostFormValue("type"))
		if err != nil {
			return err
		}
		round, _ := strconv.Atoi(req.PostFormValue("round"))
		if core.ReviewType(typ) == core.ReviewExternal {
			if reason := paper.PermRequestReview(ctx.Identity); reason != nil {
				return reason
			}
		}
		if err := ctx.db.AddReview(paper, contactID, core.ReviewType(typ), round, ctx.Identity.ID()); err != nil {
			return err
		}
		ctx.Success("review has been assigned")

	case "token":
		dbReview, err := ctx.db.ReviewDB.GetReview(paper.ID(), contactID)
		if err != nil {
			return err
		}
		token, err := auth.NewReviewToken()
		if err != nil {
			return err
		}
		if err := ctx.db.SetReviewToken(dbReview, token); err != nil {
			return err
		}
		ctx.Success("token %s has been issued", auth.FormatReviewToken(token))

	case "delete":
		dbReview, err := ctx.db.ReviewDB.GetReview(paper.ID(), contactID)
		if err != nil {
			return err
		}
		if err := ctx.db.DeleteReview(dbReview); err != nil {
			return err
		}
		ctx.Success("review has been deleted")

	default:
		return ErrAuth
	}

	ctx.SeeOther("/paper/%d/reviews", paper.ID())
	return nil
}
