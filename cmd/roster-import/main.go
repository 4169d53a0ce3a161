package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/phone-slot-api/internal/models"
	"github.com/noah-isme/phone-slot-api/internal/repository"
	"github.com/noah-isme/phone-slot-api/internal/slot"
	"github.com/noah-isme/phone-slot-api/pkg/config"
	"github.com/noah-isme/phone-slot-api/pkg/database"
	"github.com/noah-isme/phone-slot-api/pkg/logger"
)

// Expected columns, by header name: studentId, fullName, grade, qrId, slotId.
// Unknown columns are ignored; missing optional columns import as empty.

type summary struct {
	Imported int
	Skipped  int
	BadSlots int
}

func main() {
	var (
		file   = flag.String("file", "", "roster file to import (.csv or .xlsx)")
		sheet  = flag.String("sheet", "", "worksheet name for xlsx files (default: first sheet)")
		dryRun = flag.Bool("dry-run", false, "parse and validate without writing")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("usage: roster-import --file roster.csv [--dry-run]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	var rows [][]string
	switch strings.ToLower(filepath.Ext(*file)) {
	case ".csv":
		rows, err = readCSV(*file)
	case ".xlsx":
		rows, err = readXLSX(*file, *sheet)
	default:
		log.Fatalf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(*file))
	}
	if err != nil {
		sugar.Fatalw("failed to read roster file", "file", *file, "error", err)
	}
	if len(rows) < 2 {
		sugar.Fatalw("roster file has no data rows", "file", *file)
	}

	students, sum := parseRows(rows, sugar.Warnw)

	if *dryRun {
		sugar.Infow("dry run complete", "parsed", len(students), "skipped", sum.Skipped, "bad_slots", sum.BadSlots)
		return
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	repo := repository.NewStudentRepository(db)
	ctx := context.Background()
	for i := range students {
		if err := repo.Upsert(ctx, &students[i]); err != nil {
			sugar.Fatalw("failed to upsert student", "student_id", students[i].StudentID, "error", err)
		}
		sum.Imported++
	}

	sugar.Infow("roster import complete",
		"imported", sum.Imported, "skipped", sum.Skipped, "bad_slots", sum.BadSlots)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	return f.GetRows(sheet)
}

// parseRows maps header-addressed cells into roster records. Rows without a
// student id or name are skipped; unparseable grades import as 0 and invalid
// slot labels import unassigned.
func parseRows(rows [][]string, warn func(msg string, kv ...interface{})) ([]models.Student, summary) {
	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[strings.ToLower(name)]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var students []models.Student
	var sum summary

	for n, row := range rows[1:] {
		line := n + 2
		id := cell(row, "studentId")
		name := cell(row, "fullName")
		if id == "" || name == "" {
			warn("skipping row without student id or name", "line", line)
			sum.Skipped++
			continue
		}

		grade := 0
		if raw := cell(row, "grade"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				warn("unparseable grade, importing as 0", "line", line, "grade", raw)
			} else {
				grade = parsed
			}
		}

		slotID := ""
		if raw := cell(row, "slotId"); raw != "" {
			normalized, err := slot.Normalize(raw)
			if err != nil {
				warn("invalid slot label, importing unassigned", "line", line, "slot", raw)
				sum.BadSlots++
			} else {
				slotID = normalized
			}
		}

		students = append(students, models.Student{
			StudentID: id,
			FullName:  name,
			Grade:     grade,
			QRID:      cell(row, "qrId"),
			SlotID:    slotID,
		})
	}

	return students, sum
}
