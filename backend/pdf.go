package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/confer/filestore"
)

// pdf serves the paper document, or replaces it on POST.
func pdf(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	paperID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	paper, err := ctx.OpenPaper(paperID)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		if reason := paper.PermUpdatePaper(ctx.Identity); reason != nil {
			return reason
		}

		file, _, err := req.FormFile("pdf")
		if err != nil {
			return err
		}
		defer file.Close()

		if err := ctx.docs.Save(paperID, file); err != nil {
			return err
		}

		ctx.Success("document has been uploaded")
		ctx.SeeOther("/paper/%d", paperID)
		return nil
	}

	if reason := paper.PermViewPDF(ctx.Identity); reason != nil {
		return reason
	}

	if err := ctx.docs.Serve(w, req, paperID); err != nil {
		if err == filestore.ErrNoDocument {
			http.NotFound(w, req)
			return nil
		}
		return err
	}
	return nil
}
