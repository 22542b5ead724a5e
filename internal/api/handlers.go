package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

const headerReportMode = "X-Report-Mode"

// bind decodes and validates a request.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: unable to process request: %v", types.ErrInvalidInput, err)
	}
	if err := V.Struct(req); err != nil {
		return fmt.Errorf("%w: could not validate request: %v", types.ErrInvalidInput, err)
	}
	return nil
}

func idParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", types.ErrInvalidInput, c.Param("id"))
	}
	return uint(id), nil
}

// readUpload returns the content and file name of a multipart file field.
func readUpload(c echo.Context, field string) ([]byte, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing file field %q", types.ErrInvalidInput, field)
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	return content, header.Filename, nil
}

func (s *server) removeBlobs(ctx context.Context, attachments []model.Attachment) {
	for _, a := range attachments {
		if err := s.Blobs.Delete(ctx, a.FilePath); err != nil {
			log.NewLogger(ctx).Warn("failed to delete attachment file", zap.String("key", a.FilePath), zap.Error(err))
		}
	}
}

func (s *server) audit(ctx context.Context, action string, findingID uint, keepLink bool, details string) {
	entry := &model.AuditLog{
		Action:     action,
		EntityType: model.EntityFinding,
		EntityID:   findingID,
	}
	if keepLink {
		entry.FindingID = &findingID
	}
	if details != "" {
		entry.Details = &details
	}
	if err := s.Audit.Record(ctx, entry); err != nil {
		log.NewLogger(ctx).Warn("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
}

func (s *server) importTool(c echo.Context) error {
	var form importForm
	if err := bind(c, &form); err != nil {
		return err
	}
	raw, _, err := readUpload(c, "file")
	if err != nil {
		return err
	}
	result, err := s.Importer.Import(c.Request().Context(), raw, form.Tool, form.ProjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *server) exportReport(c echo.Context) error {
	var form exportForm
	if err := bind(c, &form); err != nil {
		return err
	}
	result, err := s.Exporter.Export(c.Request().Context(), form.ProjectID, form.TemplateID, form.OutputType)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	c.Response().Header().Set(headerReportMode, result.Mode())
	return c.Blob(http.StatusOK, result.ContentType, result.Content)
}

func (s *server) listProjects(c echo.Context) error {
	projects, err := s.Projects.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *server) createProject(c echo.Context) error {
	var req projectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	project := req.toModel()
	if err := s.Projects.Create(c.Request().Context(), project); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (s *server) getProject(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	project, err := s.Projects.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (s *server) deleteProject(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	removed, err := s.Projects.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeBlobs(ctx, removed)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (s *server) listProjectFindings(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := s.Projects.Get(ctx, id); err != nil {
		return err
	}
	findings, err := s.Findings.ListByProject(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, findings)
}

// resolveTags loads the tags of a finding request. Unknown ids are a client error.
func (s *server) resolveTags(ctx context.Context, ids []uint) ([]model.Tag, error) {
	tags, err := s.Tags.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	return tags, nil
}

func (s *server) createFinding(c echo.Context) error {
	var req findingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ProjectID == 0 {
		return fmt.Errorf("%w: project_id is required", types.ErrInvalidInput)
	}
	ctx := c.Request().Context()
	if _, err := s.Projects.Get(ctx, req.ProjectID); err != nil {
		return err
	}
	tags, err := s.resolveTags(ctx, req.TagIDs)
	if err != nil {
		return err
	}
	finding := req.toModel(tags)
	if err := s.Findings.Create(ctx, finding); err != nil {
		return err
	}
	s.audit(ctx, model.AuditActionCreate, finding.ID, true, "")

	created, err := s.Findings.Get(ctx, finding.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, created)
}

func (s *server) getFinding(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	finding, err := s.Findings.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, finding)
}

// updateFinding overwrites a finding. The tag set is replaced, not merged.
func (s *server) updateFinding(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req findingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	tags, err := s.resolveTags(ctx, req.TagIDs)
	if err != nil {
		return err
	}
	finding := req.toModel(tags)
	finding.ID = id
	if err := s.Findings.Update(ctx, finding); err != nil {
		return err
	}
	s.audit(ctx, model.AuditActionUpdate, id, true, "")

	updated, err := s.Findings.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *server) deleteFinding(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	removed, err := s.Findings.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeBlobs(ctx, removed)
	// the finding's own audit entries are gone with it; keep an unlinked record
	s.audit(ctx, model.AuditActionDelete, id, false, "")
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (s *server) listAttachments(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := s.Findings.Get(ctx, id); err != nil {
		return err
	}
	attachments, err := s.Findings.ListAttachments(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attachments)
}

func (s *server) uploadAttachment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := s.Findings.Get(ctx, id); err != nil {
		return err
	}
	content, filename, err := readUpload(c, "file")
	if err != nil {
		return err
	}
	key, err := s.Blobs.Put(ctx, filename, content)
	if err != nil {
		return err
	}
	attachment := &model.Attachment{FindingID: id, Filename: filename, FilePath: key}
	if err := s.Findings.AddAttachment(ctx, attachment); err != nil {
		if derr := s.Blobs.Delete(ctx, key); derr != nil {
			log.NewLogger(ctx).Warn("failed to delete orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return err
	}
	return c.JSON(http.StatusOK, attachment)
}

func (s *server) listAuditLogs(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	entries, err := s.Audit.ListByFinding(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *server) listTags(c echo.Context) error {
	tags, err := s.Tags.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (s *server) createTag(c echo.Context) error {
	var req tagRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tag, err := s.Tags.FindOrCreate(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

func (s *server) listMasterFindings(c echo.Context) error {
	findings, err := s.MasterFindings.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, findings)
}

func (s *server) createMasterFinding(c echo.Context) error {
	var req masterFindingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	finding := req.toModel()
	if err := s.MasterFindings.Create(c.Request().Context(), finding); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, finding)
}

func (s *server) deleteMasterFinding(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.MasterFindings.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (s *server) listTemplates(c echo.Context) error {
	templates, err := s.Templates.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, templates)
}

// uploadTemplate stores any declared type; only md, html and docx render.
func (s *server) uploadTemplate(c echo.Context) error {
	var form templateForm
	if err := bind(c, &form); err != nil {
		return err
	}
	content, filename, err := readUpload(c, "file")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	key, err := s.Blobs.Put(ctx, filename, content)
	if err != nil {
		return err
	}
	template := &model.ReportTemplate{Name: form.Name, Type: form.Type, FilePath: key}
	if form.Description != "" {
		template.Description = &form.Description
	}
	if err := s.Templates.Create(ctx, template); err != nil {
		if derr := s.Blobs.Delete(ctx, key); derr != nil {
			log.NewLogger(ctx).Warn("failed to delete orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return err
	}
	return c.JSON(http.StatusOK, template)
}

func (s *server) deleteTemplate(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	template, err := s.Templates.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Blobs.Delete(ctx, template.FilePath); err != nil {
		log.NewLogger(ctx).Warn("failed to delete template file", zap.String("key", template.FilePath), zap.Error(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
