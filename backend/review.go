package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/auth"
	"github.com/wansing/confer/core"
)

var reviewTmpl = tmpl(`<h1>Review of &raquo;{{ .Paper.Title }}&laquo;</h1>

	<table class="table">
		<tr>
			<th>Type</th>
			<td>{{ .Review.Type }}</td>
		</tr>
		<tr>
			<th>Round</th>
			<td>{{ .Review.Round }}</td>
		</tr>
		<tr>
			<th>Status</th>
			<td>{{ if .Review.Submitted }}submitted{{ else }}draft{{ end }}</td>
		</tr>
		{{ range .Fields }}
			<tr>
				<th>{{ .Name }}</th>
				<td>{{ .Value }}</td>
			</tr>
		{{ end }}
	</table>

	{{ if .NeedsClickthrough }}
		<div class="alert alert-info" role="alert">
			You have to accept the reviewer terms before submitting.
			<form method="post">
				<button type="submit" class="btn btn-primary" name="action" value="clickthrough">Accept the terms</button>
			</form>
		</div>
	{{ end }}

	<div class="mt-3">
		{{ if .CanAccept }}
			<form method="post" style="display: inline;">
				<button type="submit" class="btn btn-primary" name="action" value="accept">Accept assignment</button>
			</form>
			<form method="post" style="display: inline;">
				<button type="submit" class="btn btn-danger" name="action" value="decline">Decline assignment</button>
			</form>
		{{ end }}
	</div>

	{{ if .CanSubmit }}
		<h2>Review form</h2>
		<form method="post">
			<div class="form-group">
				<label>Overall merit</label>
				<select class="form-control" name="overallMerit">
					<option value="0">not filled in</option>
					{{ range .MeritScale }}
						<option value="{{ . }}"{{ if eq . $.Review.OverallMerit }} selected{{ end }}>{{ . }}</option>
					{{ end }}
				</select>
			</div>
			<div class="form-group">
				<label>Comments for the committee</label>
				<textarea class="form-control" name="commentsForPC" rows="6">{{ .Review.CommentsForPC }}</textarea>
			</div>
			<button type="submit" class="btn btn-secondary" name="action" value="save">Save draft</button>
			<button type="submit" class="btn btn-success" name="action" value="submit">Submit review</button>
		</form>
	{{ end }}

	{{ if .DeadlineName }}
		<p class="mt-3">Deadline: {{ .FormatDeadline .DeadlineName }}</p>
	{{ end }}`)

type reviewData struct {
	*context
	Paper  *core.Paper
	Review *core.Review
}

type reviewFieldRow struct {
	Name  string
	Value string
}

// Fields returns the submitted form fields which are visible to the viewer.
func (data *reviewData) Fields() []reviewFieldRow {
	if !data.Review.Submitted() {
		return nil
	}
	var rows []reviewFieldRow
	for _, field := range core.ReviewForm {
		if !data.Paper.CanViewReviewField(data.Identity, data.Review, field) {
			continue
		}
		rows = append(rows, reviewFieldRow{
			Name:  field.Name,
			Value: data.Review.FieldValue(field),
		})
	}
	return rows
}

func (data *reviewData) MeritScale() []int {
	return []int{1, 2, 3, 4, 5}
}

func (data *reviewData) NeedsClickthrough() bool {
	var s = data.db.Settings()
	return s.ClickthroughRev > 0 &&
		int64(data.Identity.Capabilities().Clickthrough()) < s.ClickthroughRev &&
		!data.Paper.Rights(data.Identity).CanAdminister
}

func (data *reviewData) CanAccept() bool {
	return data.Paper.CanAcceptReview(data.Identity, data.Review)
}

func (data *reviewData) CanSubmit() bool {
	return !data.Review.Submitted() && data.Paper.CanSubmitReview(data.Identity, data.Review)
}

func (data *reviewData) DeadlineName() string {
	if data.Review.Type() == core.ReviewExternal {
		return core.DeadlineExtRevHard
	}
	return core.DeadlinePCRevHard
}

func review(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	paperID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}
	contactID, err := strconv.Atoi(params.ByName("contact"))
	if err != nil {
		return err
	}

	paper, err := ctx.OpenPaper(paperID)
	if err != nil {
		return err
	}

	var rev *core.Review

	if contactID == ctx.Identity.ID() {
		// a fresh self-assignment is created on first visit
		rev = paper.ReviewOf(ctx.Identity)
		if rev == nil {
			if reason := paper.PermReview(ctx.Identity); reason != nil {
				return reason
			}
			if err := ctx.db.AddReview(paper, contactID, core.ReviewPC, 0, ctx.Identity.ID()); err != nil {
				return err
			}
			dbReview, err := ctx.db.ReviewDB.GetReview(paperID, contactID)
			if err != nil {
				return err
			}
			rev = &core.Review{DBReview: dbReview}
		}
	} else {
		dbReview, err := ctx.db.ReviewDB.GetReview(paperID, contactID)
		if err != nil {
			return err
		}
		rev = &core.Review{DBReview: dbReview}
		if !paper.OwnsReview(ctx.Identity, rev) && !paper.Rights(ctx.Identity).CanAdminister {
			return ErrAuth
		}
	}

	if req.Method == http.MethodPost {
		return reviewAction(req, ctx, paper, rev)
	}

	return reviewTmpl.Execute(w, &reviewData{
		context: ctx,
		Paper:   paper,
		Review:  rev,
	})
}

func reviewAction(req *http.Request, ctx *context, paper *core.Paper, rev *core.Review) error {

	switch req.PostFormValue("action") {

	case "clickthrough":
		var version = int(ctx.db.Settings().ClickthroughRev)
		ctx.Identity.AddCapability(auth.ClickthroughKey, version)
		if ctx.LoggedIn() {
			// persisted, so the agreement survives the session
			if err := ctx.db.GrantCapability(ctx.Identity.ID(), auth.ClickthroughKey, version); err != nil {
				return err
			}
		}
		ctx.Success("terms have been accepted")

	case "accept":
		if reason := paper.PermAcceptReview(ctx.Identity, rev); reason != nil {
			return reason
		}
		ctx.Success("assignment has been accepted")

	case "decline":
		if reason := paper.PermDeclineReview(ctx.Identity, rev); reason != nil {
			return reason
		}
		if err := ctx.db.DeleteReview(rev.DBReview); err != nil {
			return err
		}
		ctx.Success("assignment has been declined")
		ctx.SeeOther("/paper/%d", paper.ID())
		return nil

	case "save":
		if reason := paper.PermSubmitReview(ctx.Identity, rev); reason != nil {
			return reason
		}
		if err := saveReviewForm(req, ctx, rev); err != nil {
			return err
		}
		ctx.Success("review has been saved")

	case "submit":
		if reason := paper.PermSubmitReview(ctx.Identity, rev); reason != nil {
			return reason
		}
		if err := saveReviewForm(req, ctx, rev); err != nil {
			return err
		}
		if err := ctx.db.SubmitReview(rev.DBReview); err != nil {
			return err
		}
		ctx.Success("review has been submitted")

	default:
		return ErrAuth
	}

	ctx.SeeOther("/paper/%d/review/%d", paper.ID(), rev.ContactID())
	return nil
}

// saveReviewForm stores the posted form fields. A request without form
// fields (a bare submit button) leaves the stored values alone.
func saveReviewForm(req *http.Request, ctx *context, rev *core.Review) error {
	if req.PostFormValue("overallMerit") == "" && req.PostFormValue("commentsForPC") == "" {
		return nil
	}
	merit, _ := strconv.Atoi(req.PostFormValue("overallMerit"))
	if merit < 1 || merit > 5 {
		merit = 0
	}
	return ctx.db.UpdateReviewForm(rev.DBReview, merit, req.PostFormValue("commentsForPC"))
}
