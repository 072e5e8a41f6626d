package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"quizbank/internal/app"
	"quizbank/internal/db"
	"quizbank/internal/question"
)

func main() {
	cfg := app.LoadConfig()

	dbConn, err := db.OpenWithConfig(context.Background(), cfg.DBDriver, cfg.DBDSN, db.Config{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
	})
	if err != nil {
		log.Printf("database error: %v", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if cfg.SeedSampleQuestions {
		questionSvc := question.NewService(dbConn, question.ServiceConfig{
			PlaceholderAssignees: cfg.BulkPlaceholderAssignees,
		})
		if err := app.EnsureSeedData(context.Background(), questionSvc); err != nil {
			log.Printf("seed warning: %v", err)
		}
	}

	r := app.NewRouter(cfg, dbConn)

	log.Printf("quizbank web listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
