package assignment

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coursedeck/coursedeck/database"
	"github.com/coursedeck/coursedeck/model"
	"github.com/coursedeck/coursedeck/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test. Set TEST_DATABASE_URL to run against Postgres.")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// TestUpsertAssignmentFailureHidesDetail forces a database error (a course
// that does not exist) and checks the client gets a fixed message rather
// than the driver's error text.
func TestUpsertAssignmentFailureHidesDetail(t *testing.T) {
	db := setupTestDB(t)

	suffix := uuid.New().String()[:8]
	prof := model.Professor{
		ID: uuid.New().String(), Username: "prof-" + suffix, PasswordHash: "x",
		Role: model.RoleProfessor, FirstName: "T", LastName: "P", Email: "prof-" + suffix + "@test.edu",
	}
	if err := db.Create(&prof).Error; err != nil {
		t.Fatal(err)
	}

	handler := NewAssignmentHandler(services.NewAssignmentService(db))

	app := fiber.New()
	app.Post("/assignments", func(c *fiber.Ctx) error {
		c.Locals("user_id", prof.ID)
		return handler.UpsertAssignment(c)
	})

	payload, err := json.Marshal(map[string]interface{}{
		"name":      "Orphan task",
		"due_date":  time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"course_id": uuid.New().String(),
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/assignments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	got := string(raw)

	if !strings.Contains(got, "Failed to save assignment") {
		t.Errorf("response missing the fixed message: %s", got)
	}
	if strings.Contains(got, "SQLSTATE") || strings.Contains(got, "foreign key") {
		t.Errorf("database error detail leaked to client: %s", got)
	}
}
