package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"reportes/backend/internal/analysis"
	"reportes/backend/internal/api/handler"
	"reportes/backend/internal/config"
	"reportes/backend/internal/lexicon"
	"reportes/backend/internal/lifecycle"
	"reportes/backend/internal/models"
	"reportes/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  set-status <report_id> <status>          change a report's status
  reassign <report_id> <entity>            assign a report to another entity
  classify <title> [description]           show the routing decision for a text
  seed-entities                            create an entity per lexicon entry
  token <user_id> <role> [ttl_hours]       mint a bearer token (role: admin|citizen)`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lex, err := loadLexicon(cfg.LexiconPath)
	if err != nil {
		log.Fatalf("failed to load lexicon: %v", err)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Commands that need no database.
	switch command {
	case "classify":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin classify <title> [description]")
			os.Exit(1)
		}
		description := strings.Join(os.Args[3:], " ")
		printClassification(analysis.NewClassifier(lex).Classify(os.Args[2], description))
		return
	case "token":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin token <user_id> <role> [ttl_hours]")
			os.Exit(1)
		}
		ttl := 24 * time.Hour
		if len(os.Args) > 4 {
			hours, err := strconv.Atoi(os.Args[4])
			if err != nil || hours <= 0 {
				fmt.Println("Invalid ttl. Please provide a positive number of hours.")
				os.Exit(1)
			}
			ttl = time.Duration(hours) * time.Hour
		}
		tok, err := handler.GenerateToken([]byte(cfg.JWTSecret), os.Args[2], "", "", os.Args[3], ttl)
		if err != nil {
			log.Fatalf("Error minting token: %v", err)
		}
		fmt.Println(tok)
		return
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis only carries events here, so dashboards see admin changes.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}
	storageSvc := storage.NewStorageService(db, rdb, zap.NewNop(), cfg.EntityCacheTTL)

	guard := lifecycle.AllowAll
	if cfg.StrictTransitions {
		guard = lifecycle.Strict
	}
	machine := lifecycle.NewMachine(guard)

	switch command {
	case "set-status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-status <report_id> <status>")
			os.Exit(1)
		}
		status := os.Args[3]
		report, err := patchReport(ctx, storageSvc, machine, os.Args[2], models.ReportPatch{Status: &status})
		if err != nil {
			log.Fatalf("Error updating status: %v", err)
		}
		fmt.Printf("Report %s is now %s.\n", report.ID, report.Status)
	case "reassign":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin reassign <report_id> <entity>")
			os.Exit(1)
		}
		entity := os.Args[3]
		if !lex.Has(entity) {
			fmt.Printf("Warning: %q is not a lexicon entity.\n", entity)
		}
		report, err := patchReport(ctx, storageSvc, machine, os.Args[2], models.ReportPatch{EntityName: &entity})
		if err != nil {
			log.Fatalf("Error reassigning report: %v", err)
		}
		fmt.Printf("Report %s assigned to %s.\n", report.ID, report.EntityName)
	case "seed-entities":
		n, err := seedEntities(ctx, storageSvc, lex)
		if err != nil {
			log.Fatalf("Error seeding entities: %v", err)
		}
		fmt.Printf("%d entities seeded.\n", n)
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default()
	}
	return lexicon.LoadFile(path)
}

func printClassification(res analysis.Result) {
	fmt.Printf("Entity:     %s\n", res.Entity)
	fmt.Printf("Confidence: %d\n", res.Confidence)
	fmt.Printf("Score:      %d\n", res.Score)
	fmt.Printf("Reasoning:  %s\n", res.Reasoning)
}

func patchReport(ctx context.Context, s storage.Storage, m *lifecycle.Machine, id string, patch models.ReportPatch) (*models.Report, error) {
	current, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := m.Apply(*current, patch)
	if err != nil {
		return nil, err
	}
	if next.EntityName != current.EntityName {
		if entity, err := s.GetEntityByName(ctx, next.EntityName); err == nil {
			next.EntityID = &entity.ID
		}
	}
	if err := s.UpdateReport(ctx, &next, &current.Version); err != nil {
		return nil, err
	}

	evt := models.NewReportEvent(models.EventReportUpdated, &next)
	if next.Status != current.Status {
		evt.PreviousStatus = current.Status
	}
	if next.EntityName != current.EntityName {
		evt.PreviousEntity = current.EntityName
	}
	if err := s.PublishEvent(ctx, evt); err != nil {
		fmt.Printf("Warning: event not published: %v\n", err)
	}
	return &next, nil
}

// seedEntities creates the lexicon entities missing from the directory.
// Existing rows keep their contact details.
func seedEntities(ctx context.Context, s storage.Storage, lex *lexicon.Lexicon) (int, error) {
	n := 0
	for _, name := range lex.EntityNames() {
		_, err := s.GetEntityByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return n, fmt.Errorf("%s: %w", name, err)
		}
		if err := s.CreateEntity(ctx, &models.Entity{Name: name}); err != nil {
			return n, fmt.Errorf("%s: %w", name, err)
		}
		n++
	}
	return n, nil
}
