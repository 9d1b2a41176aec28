package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/logger"
)

func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req entities.QueryRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid query body: "+err.Error())
	}
	if strings.TrimSpace(req.Question) == "" {
		return detail(c, fiber.StatusUnprocessableEntity, "question is required")
	}

	s.mu.Lock()
	s.queries = append(s.queries, req)
	s.mu.Unlock()

	resp, err := s.cfg.Answer(c.UserContext(), req)
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, err.Error())
	}
	if resp.Sources == nil {
		resp.Sources = []entities.Source{}
	}
	return c.JSON(resp)
}

// answerFromStore cites the newest vectorized documents of the department.
func (s *Server) answerFromStore(ctx context.Context, req entities.QueryRequest) (*entities.QueryResponse, error) {
	topK := req.TopK.OrElse(DefaultTopK)
	docs, _, err := s.store.List(ctx, req.DepartmentID, 0, -1)
	if err != nil {
		return nil, err
	}

	sources := []entities.Source{}
	for _, doc := range docs {
		if len(sources) >= topK {
			break
		}
		if !doc.Vectorized {
			continue
		}
		sources = append(sources, entities.Source{
			DocumentID: doc.ID,
			ChunkID:    fmt.Sprintf("%d-0", doc.ID),
			Filename:   doc.OriginalFilename,
			Score:      1 - 0.1*float64(len(sources)),
		})
	}

	if len(sources) == 0 {
		return &entities.QueryResponse{Answer: MsgNoAnswer, Sources: sources}, nil
	}
	return &entities.QueryResponse{
		Answer:  fmt.Sprintf("Found %d relevant documents for %q.", len(sources), req.Question),
		Sources: sources,
	}, nil
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	departmentID, err := queryInt(c, "department_id", 0)
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	limit, err := queryInt(c, "limit", DefaultPageLimit)
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	docs, total, err := s.store.List(c.UserContext(), departmentID, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(entities.DocumentListResponse{Total: total, Documents: docs})
}

func (s *Server) handleGetDocument(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	doc, ok, err := s.store.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !ok {
		return detail(c, fiber.StatusNotFound, MsgNotFound)
	}
	return c.JSON(doc)
}

func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ok, err := s.store.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !ok {
		return detail(c, fiber.StatusNotFound, MsgNotFound)
	}
	return c.JSON(fiber.Map{"message": MsgDeleted})
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "file is required (form field: file)")
	}
	if file.Filename == "" {
		return detail(c, fiber.StatusBadRequest, "文件名不能为空")
	}

	departmentID := 1
	if v := c.FormValue("department_id"); v != "" {
		departmentID, err = strconv.Atoi(v)
		if err != nil {
			return detail(c, fiber.StatusUnprocessableEntity, "department_id must be an integer")
		}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !s.allowed(ext) {
		return detail(c, fiber.StatusBadRequest,
			"不支持的文件类型。支持的类型: "+strings.Join(s.cfg.AllowedExtensions, ", "))
	}
	if file.Size > s.cfg.MaxUploadSize {
		return detail(c, fiber.StatusBadRequest,
			fmt.Sprintf("文件大小超过限制 (%d bytes)", s.cfg.MaxUploadSize))
	}

	doc := &entities.Document{
		Filename:         uuid.NewString() + ext,
		OriginalFilename: file.Filename,
		FileType:         fileType(file.Filename),
		FileSize:         file.Size,
		Status:           entities.StatusPending,
	}
	if err := s.store.Create(c.UserContext(), doc, departmentID); err != nil {
		return err
	}
	logger.Logger().Info("document uploaded", "id", doc.ID, "filename", doc.OriginalFilename, "department_id", departmentID)

	if s.cfg.ProcessingDelay > 0 {
		s.process(doc.ID)
	}
	return c.JSON(doc)
}

// process marks the document vectorized after the configured delay.
func (s *Server) process(id int) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		select {
		case <-s.done:
			return
		case <-time.After(s.cfg.ProcessingDelay):
		}

		ctx := context.Background()
		doc, ok, err := s.store.Get(ctx, id)
		if err != nil || !ok {
			return
		}
		doc.Status = entities.StatusCompleted
		doc.Vectorized = true
		doc.ChunkCount = s.cfg.ChunkCount
		if err := s.store.Update(ctx, doc); err != nil {
			logger.Logger().Error("marking document vectorized", "id", id, "error", err)
		}
	}()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(entities.HealthStatus{Status: "healthy", Message: "AskIt API is running"})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	docs, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	departments, err := s.store.Departments(ctx)
	if err != nil {
		return err
	}
	return c.JSON(entities.Stats{Users: s.cfg.Users, Documents: docs, Departments: departments})
}

func (s *Server) allowed(ext string) bool {
	for _, e := range s.cfg.AllowedExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func pathID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, "document id must be an integer")
	}
	return id, nil
}
