// Command create-admin bootstraps an administrator account.
package main

import (
	"context"
	"flag"
	stdLog "log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/versewell/library-service/config"
	"github.com/versewell/library-service/migrations"
	"github.com/versewell/library-service/pkg/auth"
	"github.com/versewell/library-service/pkg/postgres"
)

func main() {
	name := flag.String("name", "Admin", "admin display name")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	role := flag.String("role", auth.RoleAdmin, "admin role")
	flag.Parse()

	if *email == "" || *password == "" {
		stdLog.Fatal("email and password are required")
	}

	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", err)
	}
	cfg := config.NewConfig()

	ctx := context.Background()
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		stdLog.Fatal("db init ", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatal("hash password ", err)
	}

	q := `
insert into admins (name, email, password, role)
values ($1, $2, $3, $4)
on conflict (email) do update set password = excluded.password, role = excluded.role
returning id`
	var id int
	if err := db.QueryRowContext(ctx, q, *name, *email, string(hash), *role).Scan(&id); err != nil {
		stdLog.Fatal("insert admin ", err)
	}
	stdLog.Printf("admin %q ready (id=%d)", *email, id)
}
