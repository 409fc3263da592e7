package handlers

import (
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ravindrauiet/relove-backend/config"
)

// UploadHandler handles standalone file uploads (profile pictures).
type UploadHandler struct {
	Cfg *config.Config
}

func NewUploadHandler(cfg *config.Config) *UploadHandler {
	return &UploadHandler{Cfg: cfg}
}

// UploadProfilePicture - POST /api/upload/avatar
// Saves the image and returns its public URL. The caller persists the URL on
// their profile via PUT /api/users/profile.
func (h *UploadHandler) UploadProfilePicture(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Image file is required")
	}

	url, err := saveImage(c, h.Cfg.UploadDir, "avatars", file)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"url": url})
}

// saveImage validates the extension, writes the file under
// uploadDir/subdir with a unique name and returns the public URL.
func saveImage(c *fiber.Ctx, uploadDir, subdir string, file *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(file.Filename)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "Only .jpg, .jpeg, .png and .webp files are allowed")
	}

	filename := uuid.NewString() + ext
	destination := filepath.Join(uploadDir, subdir, filename)

	if err := c.SaveFile(file, destination); err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Could not save file")
	}

	return fmt.Sprintf("/uploads/%s/%s", subdir, filename), nil
}
