// Package apptest provides in-memory repositories for tests that need a
// working app.State without a database.
package apptest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/billbatista/acasinha-ledger/category"
	"github.com/billbatista/acasinha-ledger/eventlogger"
	"github.com/billbatista/acasinha-ledger/ledger"
	"github.com/billbatista/acasinha-ledger/session"
	"github.com/billbatista/acasinha-ledger/user"
	"github.com/google/uuid"
)

type Ledgers struct {
	Ledgers  map[uuid.UUID]ledger.Ledger
	Expenses []ledger.Expense
}

func NewLedgers() *Ledgers {
	return &Ledgers{Ledgers: make(map[uuid.UUID]ledger.Ledger)}
}

func (f *Ledgers) CreateNew(_ context.Context, l ledger.Ledger) error {
	f.Ledgers[l.ID] = l
	return nil
}

func (f *Ledgers) UpdateLedger(_ context.Context, l ledger.Ledger) error {
	f.Ledgers[l.ID] = l
	return nil
}

func (f *Ledgers) GetLedgerByID(_ context.Context, id uuid.UUID) (*ledger.Ledger, error) {
	l, ok := f.Ledgers[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f *Ledgers) ListLedgers(_ context.Context) ([]ledger.Ledger, error) {
	out := make([]ledger.Ledger, 0, len(f.Ledgers))
	for _, l := range f.Ledgers {
		out = append(out, l)
	}
	return out, nil
}

func (f *Ledgers) DeleteLedger(_ context.Context, id uuid.UUID) error {
	f.Expenses = slices.DeleteFunc(f.Expenses, func(e ledger.Expense) bool { return e.LedgerID == id })
	delete(f.Ledgers, id)
	return nil
}

func (f *Ledgers) RemoveMember(_ context.Context, userID uuid.UUID) error {
	for id, l := range f.Ledgers {
		l.Members = slices.DeleteFunc(slices.Clone(l.Members), func(m uuid.UUID) bool { return m == userID })
		f.Ledgers[id] = l
	}
	return nil
}

func (f *Ledgers) SaveExpense(_ context.Context, e ledger.Expense) error {
	f.Expenses = append(f.Expenses, e)
	return nil
}

func (f *Ledgers) UpdateExpense(_ context.Context, e ledger.Expense) error {
	for i := range f.Expenses {
		if f.Expenses[i].ID == e.ID {
			f.Expenses[i] = e
			return nil
		}
	}
	return errors.New("no such expense")
}

func (f *Ledgers) DeleteExpense(_ context.Context, id uuid.UUID) error {
	f.Expenses = slices.DeleteFunc(f.Expenses, func(e ledger.Expense) bool { return e.ID == id })
	return nil
}

func (f *Ledgers) GetExpense(_ context.Context, id uuid.UUID) (*ledger.Expense, error) {
	for _, e := range f.Expenses {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *Ledgers) GetExpenses(_ context.Context, ledgerID uuid.UUID) ([]ledger.Expense, error) {
	var out []ledger.Expense
	for _, e := range f.Expenses {
		if e.LedgerID == ledgerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type Users struct {
	Items []user.User
}

// Register stores "hash:"+password in place of a bcrypt hash.
func (f *Users) Register(_ context.Context, name, email, password string) (*user.User, error) {
	at := strings.Index(email, "@")
	if at <= 0 {
		return nil, user.ErrInvalidEmail
	}
	if strings.TrimSpace(name) == "" {
		name = email[:at]
	}
	if password == "" {
		return nil, user.ErrBlankPassword
	}
	for _, u := range f.Items {
		if u.Email == email {
			return nil, user.ErrEmailExists
		}
	}
	u, err := user.NewMember(name, "")
	if err != nil {
		return nil, err
	}
	u.Email = email
	u.PasswordHash = "hash:" + password
	f.Items = append(f.Items, u)
	return &u, nil
}

func (f *Users) Create(_ context.Context, u user.User) error {
	f.Items = append(f.Items, u)
	return nil
}

func (f *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.Items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *Users) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range f.Items {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *Users) List(_ context.Context) ([]user.User, error) {
	return f.Items, nil
}

func (f *Users) Count(_ context.Context) (int, error) {
	return len(f.Items), nil
}

func (f *Users) VerifyPassword(hashedPassword, password string) error {
	if hashedPassword != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func (f *Users) UpdateName(_ context.Context, userID uuid.UUID, name string) error {
	for i := range f.Items {
		if f.Items[i].ID == userID {
			f.Items[i].Name = name
		}
	}
	return nil
}

func (f *Users) UpdateAvatar(_ context.Context, img []byte, userID uuid.UUID) error {
	for i := range f.Items {
		if f.Items[i].ID == userID {
			f.Items[i].Avatar = img
		}
	}
	return nil
}

func (f *Users) Delete(_ context.Context, userID uuid.UUID) error {
	f.Items = slices.DeleteFunc(f.Items, func(u user.User) bool { return u.ID == userID })
	return nil
}

type Categories struct {
	Items []category.Category
}

func (f *Categories) Create(_ context.Context, c category.Category) error {
	f.Items = append(f.Items, c)
	return nil
}

func (f *Categories) Update(_ context.Context, c category.Category) error {
	for i := range f.Items {
		if f.Items[i].ID == c.ID {
			f.Items[i] = c
		}
	}
	return nil
}

func (f *Categories) Delete(_ context.Context, id uuid.UUID) error {
	f.Items = slices.DeleteFunc(f.Items, func(c category.Category) bool { return c.ID == id })
	return nil
}

func (f *Categories) GetByID(_ context.Context, id uuid.UUID) (*category.Category, error) {
	for _, c := range f.Items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *Categories) GetByName(_ context.Context, name string) (*category.Category, error) {
	for _, c := range f.Items {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *Categories) List(_ context.Context) ([]category.Category, error) {
	return f.Items, nil
}

func (f *Categories) Count(_ context.Context) (int, error) {
	return len(f.Items), nil
}

// Sessions uses the token itself as the lookup key.
type Sessions struct {
	ByToken map[string]session.Session
}

func NewSessions() *Sessions {
	return &Sessions{ByToken: make(map[string]session.Session)}
}

func (f *Sessions) Create(_ context.Context, userID uuid.UUID) (*session.Session, error) {
	s := session.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	f.ByToken[s.Token] = s
	return &s, nil
}

func (f *Sessions) GetByToken(_ context.Context, token string) (*session.Session, error) {
	s, ok := f.ByToken[token]
	if !ok {
		return nil, session.ErrInvalidSession
	}
	return &s, nil
}

func (f *Sessions) Delete(_ context.Context, token string) error {
	delete(f.ByToken, token)
	return nil
}

func (f *Sessions) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	for token, s := range f.ByToken {
		if s.UserID == userID {
			delete(f.ByToken, token)
		}
	}
	return nil
}

// Events is both the asynchronous sink and the history store.
type Events struct {
	mu     sync.Mutex
	events []eventlogger.Event
}

func (r *Events) Log(e eventlogger.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return true
}

func (r *Events) ForLedger(_ context.Context, ledgerID uuid.UUID, limit int) ([]eventlogger.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []eventlogger.Event
	for _, e := range r.events {
		if e.LedgerID.Valid && e.LedgerID.UUID == ledgerID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *Events) Save(_ context.Context, e eventlogger.Event) error {
	r.Log(e)
	return nil
}

func (r *Events) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}


var (
	_ ledger.Repository       = (*Ledgers)(nil)
	_ user.Repository         = (*Users)(nil)
	_ category.Repository     = (*Categories)(nil)
	_ session.Repository      = (*Sessions)(nil)
	_ eventlogger.Sink        = (*Events)(nil)
	_ eventlogger.EventLogger = (*Events)(nil)
)
