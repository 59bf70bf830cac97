package app

import (
	"github.com/billbatista/acasinha-ledger/app/apptest"
	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/billbatista/acasinha-ledger/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fixture struct {
	state      *State
	ledgers    *apptest.Ledgers
	users      *apptest.Users
	categories *apptest.Categories
	sessions   *apptest.Sessions
	sink       *apptest.Events
	alice, bob user.User
}

func newFixture() *fixture {
	alice, _ := user.NewMember("Alice", "")
	bob, _ := user.NewMember("Bob", "")

	f := &fixture{
		ledgers:    apptest.NewLedgers(),
		users:      &apptest.Users{Items: []user.User{alice, bob}},
		categories: &apptest.Categories{},
		sessions:   apptest.NewSessions(),
		sink:       &apptest.Events{},
		alice:      alice,
		bob:        bob,
	}
	for _, c := range category.Defaults {
		c.ID = uuid.New()
		f.categories.Items = append(f.categories.Items, c)
	}

	rates := currency.NewRateTable(currency.TWD, map[currency.Code]decimal.Decimal{
		currency.TWD: decimal.NewFromInt(1),
		currency.USD: decimal.RequireFromString("0.03125"),
	})
	f.state = New(Repositories{
		Ledgers:    f.ledgers,
		Users:      f.users,
		Categories: f.categories,
		Sessions:   f.sessions,
	}, f.sink, f.sink, rates, Settings{
		BaseCurrency:  currency.TWD,
		MonthlyBudget: decimal.NewFromInt(30000),
	})
	return f
}
