package handler

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"

	"arthagpt/internal/domain"
	"arthagpt/internal/vectorstore"
)

// DocumentHandler handles upload, listing, deletion and search.
type DocumentHandler struct {
	svc Service
}

func NewDocumentHandler(svc Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Register sets up document routes.
func (h *DocumentHandler) Register(router fiber.Router) {
	docs := router.Group("/documents")
	docs.Post("/", h.Upload)
	docs.Get("/", h.List)
	docs.Delete("/", h.Clear)
	docs.Delete("/:source", h.Delete)
	router.Post("/search", h.Search)
}

// Upload accepts either a JSON body or a multipart "file" field.
func (h *DocumentHandler) Upload(c fiber.Ctx) error {
	var body struct {
		Content string `json:"content"`
		Source  string `json:"source"`
		Type    string `json:"type"`
	}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
		}
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
		}
		body.Content = string(data)
		body.Source = fh.Filename
		body.Type = c.FormValue("type")
		if body.Type == "" {
			body.Type = fh.Header.Get(fiber.HeaderContentType)
		}
	} else if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	res, err := h.svc.IngestText(c.Context(), body.Content, domain.DocumentInfo{
		Source: body.Source,
		Type:   body.Type,
		Size:   int64(len(body.Content)),
	})
	if err != nil {
		if errors.Is(err, vectorstore.ErrPersist) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  "failed to store document",
				"source": body.Source,
			})
		}
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// List returns stored documents with counts.
func (h *DocumentHandler) List(c fiber.Ctx) error {
	docs := h.svc.Documents()
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	st := h.svc.Stats()
	return c.JSON(fiber.Map{
		"documents":      docs,
		"document_count": st.Documents,
		"chunk_count":    st.Chunks,
	})
}

// Delete removes one document by source.
func (h *DocumentHandler) Delete(c fiber.Ctx) error {
	source, err := url.PathUnescape(c.Params("source"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid source"})
	}
	removed, err := h.svc.DeleteDocument(c.Context(), source)
	if err != nil {
		return errorResponse(c, err)
	}
	if removed == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
	}
	return c.JSON(fiber.Map{"source": source, "removed": removed})
}

// Clear removes every document.
func (h *DocumentHandler) Clear(c fiber.Ctx) error {
	if err := h.svc.ClearAll(c.Context()); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Search ranks stored chunks against a query.
func (h *DocumentHandler) Search(c fiber.Ctx) error {
	var body struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}
	results, err := h.svc.Search(c.Context(), body.Query, body.TopK)
	if err != nil {
		return errorResponse(c, err)
	}

	out := make([]fiber.Map, len(results))
	for i, r := range results {
		out[i] = fiber.Map{
			"id":      r.Chunk.ID,
			"source":  r.Chunk.Metadata.Source,
			"content": r.Chunk.Content,
			"score":   r.Score,
		}
	}
	return c.JSON(fiber.Map{"results": out, "count": len(out)})
}
