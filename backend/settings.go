package backend

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/core"
	"github.com/wansing/confer/util"
)

var settingsTmpl = tmpl(`<h1>Settings</h1>

	<form method="post">

		<h2>Review process</h2>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">Blind submissions</label>
			<div class="col-sm-6">
				<select class="form-control" name="sub_blind">
					<option value="0" {{ if eq .Blindness 0 }}selected{{ end }}>never</option>
					<option value="1" {{ if eq .Blindness 1 }}selected{{ end }}>optional</option>
					<option value="2" {{ if eq .Blindness 2 }}selected{{ end }}>always</option>
					<option value="3" {{ if eq .Blindness 3 }}selected{{ end }}>until review</option>
				</select>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">Decisions visible to</label>
			<div class="col-sm-6">
				<select class="form-control" name="seedec">
					<option value="0" {{ if eq .SeeDecision 0 }}selected{{ end }}>administrators</option>
					<option value="1" {{ if eq .SeeDecision 1 }}selected{{ end }}>reviewers</option>
					<option value="2" {{ if eq .SeeDecision 2 }}selected{{ end }}>unconflicted PC</option>
					<option value="3" {{ if eq .SeeDecision 3 }}selected{{ end }}>authors</option>
				</select>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">PC sees all submissions</label>
			<div class="col-sm-6">
				<input type="checkbox" name="pc_seeall" {{ if .PCSeeAll }}checked{{ end }}>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">External reviewers see decisions</label>
			<div class="col-sm-6">
				<input type="checkbox" name="extrev_seedec" {{ if .ExtRevSeeDec }}checked{{ end }}>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">External reviewers see other reviews</label>
			<div class="col-sm-6">
				<input type="checkbox" name="extrev_view" {{ if .ExtRevSeeRevs }}checked{{ end }}>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">Reviewer terms version (0 = none)</label>
			<div class="col-sm-6">
				<input type="number" class="form-control" name="clickthrough_rev" value="{{ .Clickthrough }}">
			</div>
		</div>

		<h2>Deadlines</h2>

		<p>Format: <code>02.01.2006 15:04</code>, empty clears the deadline.</p>

		{{ range .Deadlines }}
			<div class="form-group row">
				<label class="col-sm-6 col-form-label"><code>{{ .Name }}</code></label>
				<div class="col-sm-6">
					<input type="text" class="form-control" name="deadline_{{ .Name }}" value="{{ .Value }}">
				</div>
			</div>
		{{ end }}

		<button type="submit" class="btn btn-primary">Save</button>

	</form>`)

type deadlineField struct {
	Name  string
	Value string
}

type settingsData struct {
	*context
	settings *core.Settings
}

func (data *settingsData) Blindness() int {
	return int(data.settings.Blindness)
}

func (data *settingsData) SeeDecision() int {
	return int(data.settings.SeeDecision)
}

func (data *settingsData) PCSeeAll() bool {
	return data.settings.PCSeeAllSubmissions
}

func (data *settingsData) ExtRevSeeDec() bool {
	return data.settings.ExtRevSeeDecision
}

func (data *settingsData) ExtRevSeeRevs() bool {
	return data.settings.ExtRevSeeReviews
}

func (data *settingsData) Clickthrough() int64 {
	return data.settings.ClickthroughRev
}

func (data *settingsData) Deadlines() []deadlineField {
	var fields = []deadlineField{}
	for _, name := range core.DeadlineNames() {
		var value string
		if ts := data.settings.Deadline(name); ts != 0 {
			value = time.Unix(ts, 0).Format("02.01.2006 15:04")
		}
		fields = append(fields, deadlineField{name, value})
	}
	return fields
}

func settings(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.IsChair() {
		return ErrAuth
	}

	if req.Method == http.MethodPost {

		var values = map[string]int64{}

		for _, name := range []string{core.SettingBlindness, core.SettingSeeDecision, core.SettingClickthrough} {
			v, err := strconv.ParseInt(req.PostFormValue(name), 10, 64)
			if err != nil {
				return err
			}
			values[name] = v
		}

		for _, name := range []string{core.SettingPCSeeAll, core.SettingExtRevSeeDec, core.SettingExtRevSeeRevs} {
			if req.PostFormValue(name) != "" {
				values[name] = 1
			} else {
				values[name] = 0
			}
		}

		for _, name := range core.DeadlineNames() {
			ts, err := util.ParseTime(req.PostFormValue("deadline_" + name))
			if err != nil {
				return err
			}
			values[name] = ts
		}

		for name, value := range values {
			if err := ctx.db.SetSetting(name, value); err != nil {
				return err
			}
		}

		ctx.Success("settings have been saved")
		ctx.SeeOther("/settings")
		return nil
	}

	return settingsTmpl.Execute(w, &settingsData{
		context:  ctx,
		settings: ctx.db.Settings(),
	})
}
