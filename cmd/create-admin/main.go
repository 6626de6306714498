package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/quidz-backend/internal/app"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/services"
)

// create-admin grants the admin role to an account, registering it first when
// -password is given and the email is unknown.
func main() {
	var email, password, name string
	flag.StringVar(&email, "email", "", "account email (required)")
	flag.StringVar(&password, "password", "", "password for a new account")
	flag.StringVar(&name, "name", "Administrator", "full name for a new account")
	flag.Parse()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		flag.Usage()
		os.Exit(2)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	profile, err := application.Repos.Profile.GetByEmail(dbc, email)
	if err != nil {
		fmt.Printf("load profile: %v\n", err)
		os.Exit(1)
	}
	if profile == nil {
		if password == "" {
			fmt.Printf("no account for %s; pass -password to create one\n", email)
			os.Exit(1)
		}
		profile, err = application.Services.Auth.RegisterUser(ctx, services.RegisterInput{
			Email:    email,
			Password: password,
			FullName: name,
		})
		if err != nil {
			fmt.Printf("register: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created account %s (%s)\n", email, profile.ID)
	}

	if err := application.Repos.UserRole.Grant(dbc, profile.ID, user.RoleAdmin); err != nil {
		fmt.Printf("grant admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s is now admin\n", email)
}
