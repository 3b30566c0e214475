package main

import (
	"flag"
	"log"
	"net/url"

	"hashop_store/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back one migration instead of migrating up")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db := cfg.Database
	dsn := "postgres://" + url.QueryEscape(db.User) + ":" + url.QueryEscape(db.Password) +
		"@" + db.Host + ":" + db.Port + "/" + db.DBName + "?sslmode=" + db.SSLMode

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		log.Fatal(err)
	}

	if *down {
		if err := m.Steps(-1); err != nil {
			log.Fatal(err)
		}
		log.Println("Rolled back one migration")
		return
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal(err)
	}
	log.Println("Migration successful")
}
