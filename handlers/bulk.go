package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"shouldcost/logger"
	"shouldcost/services"
	"shouldcost/templates"
)

// FileSource serves the workbooks the pricing API produces.
type FileSource interface {
	Template(ctx context.Context) (*services.Download, error)
	DownloadExcel(ctx context.Context, resultsJSON string) (*services.Download, error)
}

// pollTrigger is the htmx trigger the progress bar refreshes with.
func pollTrigger(interval time.Duration) string {
	return fmt.Sprintf("every %dms", interval.Milliseconds())
}

func workspaceData(page *services.BulkPage, poll time.Duration) templates.BulkWorkspaceData {
	return templates.BulkWorkspaceData{
		Snapshot: page.Snapshot(),
		Poll:     pollTrigger(poll),
	}
}

func renderWorkspace(e *core.RequestEvent, page *services.BulkPage, poll time.Duration) error {
	return templates.BulkWorkspace(workspaceData(page, poll)).Render(e.Request.Context(), e.Response)
}

// HandleBulkPage renders the bulk upload page in the session's current state.
func HandleBulkPage(poll time.Duration) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}

		component := templates.BulkPage(templates.BulkPageData{
			Rates:     services.BuildRateInputs(sess.Bulk.Rates()),
			MaxUpload: humanize.IBytes(uint64(services.MaxUploadBytes)),
			Workspace: workspaceData(sess.Bulk, poll),
		})
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleBulkSelect accepts the chosen workbook, validates it with the pricing
// API and re-renders the workspace with the outcome.
func HandleBulkSelect(poll time.Duration) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			sess.Bulk.ShowError(services.ErrNoFile)
			return renderWorkspace(e, sess.Bulk, poll)
		}
		defer file.Close()

		err = sess.Bulk.Select(e.Request.Context(), header.Filename, header.Size, file)
		if errors.Is(err, services.ErrBusy) {
			return ErrorToast(e, http.StatusConflict, services.ErrBusy.Error())
		}
		return renderWorkspace(e, sess.Bulk, poll)
	}
}

// HandleBulkClear drops the selected file and everything derived from it.
func HandleBulkClear(poll time.Duration) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}
		if err := sess.Bulk.Clear(); err != nil {
			return ErrorToast(e, http.StatusConflict, err.Error())
		}
		return renderWorkspace(e, sess.Bulk, poll)
	}
}

// HandleBulkProcess starts processing the validated workbook with the rate
// settings included in the request.
func HandleBulkProcess(poll time.Duration) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form submission")
		}

		rates := services.ParseRateSettings(e.Request.PostForm)
		if err := sess.Bulk.Start(e.Request.Context(), rates); err != nil {
			if errors.Is(err, services.ErrBusy) {
				return ErrorToast(e, http.StatusConflict, err.Error())
			}
			logger.Warn(e.Request.Context(), "Bulk processing refused", zap.Error(err))
		}
		return renderWorkspace(e, sess.Bulk, poll)
	}
}

// HandleBulkProgress is polled while the progress bar is visible.
func HandleBulkProgress(poll time.Duration) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}
		return renderWorkspace(e, sess.Bulk, poll)
	}
}

// HandleBulkRow opens the detail modal for one successful row.
func HandleBulkRow() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}

		rowNumber, err := strconv.Atoi(e.Request.PathValue("row"))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid row number")
		}

		detail, err := sess.Bulk.OpenRow(rowNumber)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, err.Error())
		}
		return templates.RowModal(detail).Render(e.Request.Context(), e.Response)
	}
}

// HandleBulkModalClose closes the open modal. Closing with nothing open is
// a no-op; both answer with an empty body that clears #modal-root.
func HandleBulkModalClose() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}
		sess.Bulk.CloseModal()
		return e.HTML(http.StatusOK, "")
	}
}

// HandleBulkTemplate relays the blank upload workbook from the pricing API.
func HandleBulkTemplate(files FileSource) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		dl, err := files.Template(e.Request.Context())
		if err != nil {
			logger.Warn(e.Request.Context(), "Template download failed", zap.Error(err))
			return failDownload(e, http.StatusBadGateway, services.DisplayMessage(err))
		}
		return writeDownload(e, dl, "bulk_upload_template.xlsx")
	}
}

// HandleBulkDownloadExcel relays the results workbook. The rows arrive as
// the JSON `results` query value submitted by the download form.
func HandleBulkDownloadExcel(files FileSource) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		resultsJSON := e.Request.URL.Query().Get("results")
		if resultsJSON == "" {
			return failDownload(e, http.StatusBadRequest, services.ErrNoResults.Error())
		}

		dl, err := files.DownloadExcel(e.Request.Context(), resultsJSON)
		if err != nil {
			logger.Warn(e.Request.Context(), "Results download failed", zap.Error(err))
			return failDownload(e, http.StatusBadGateway, services.DisplayMessage(err))
		}
		return writeDownload(e, dl, fmt.Sprintf("should_cost_results_%s.xlsx", time.Now().Format("20060102")))
	}
}

func writeDownload(e *core.RequestEvent, dl *services.Download, fallbackName string) error {
	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	disposition := dl.ContentDisposition
	if disposition == "" {
		disposition = fmt.Sprintf(`attachment; filename="%s"`, fallbackName)
	}

	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", disposition)
	_, err := e.Response.Write(dl.Body)
	return err
}
