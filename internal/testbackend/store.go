package testbackend

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// adminAccount is the server-side view of an admin, including everything the
// wire model never exposes.
type adminAccount struct {
	ID                    string
	Name                  string
	Email                 string
	RoleName              string
	RoleDisplayName       string
	RoleLevel             int
	AdditionalPermissions []string

	PasswordHash       []byte
	MustChangePassword bool

	MFARequired   bool
	MFAEnabled    bool
	TOTPSecret    string
	PendingSecret string
	BackupCodes   []string

	FailedLogins int
	LockedUntil  time.Time
}

type user struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	UserType  string
	Blocked   bool
	CreatedAt time.Time
}

type property struct {
	ID        string
	Title     string
	OwnerName string
	City      string
	Price     float64
	Status    string
	Reason    string
	CreatedAt time.Time
}

type category struct {
	ID       string
	Name     string
	ParentID string
}

type propertyType struct {
	ID   string
	Name string
}

type lead struct {
	ID         string
	PropertyID string
	ClientName string
	Phone      string
	Status     string
	CreatedAt  time.Time
}

type report struct {
	ID         string
	TargetType string
	TargetID   string
	Reason     string
	Status     string
	ReportedBy string
	CreatedAt  time.Time
}

type activity struct {
	At     time.Time
	Actor  string
	Action string
}

// store holds all backend state in memory behind one mutex. Handlers take the
// lock, mutate, and release; nothing escapes by reference.
type store struct {
	mu sync.Mutex

	admins        map[string]*adminAccount // keyed by email
	users         []*user
	properties    []*property
	categories    []*category
	propertyTypes []*propertyType
	leads         []*lead
	reports       []*report
	activities    []activity
}

func (s *store) adminByEmail(email string) *adminAccount {
	return s.admins[strings.ToLower(strings.TrimSpace(email))]
}

func (s *store) adminByID(id string) *adminAccount {
	for _, a := range s.admins {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *store) recordActivity(actor, action string) {
	s.activities = append(s.activities, activity{
		At:     time.Now().UTC(),
		Actor:  actor,
		Action: action,
	})
	if len(s.activities) > 50 {
		s.activities = s.activities[len(s.activities)-50:]
	}
}

func hashPassword(plain string) []byte {
	// MinCost keeps test setup fast; this is fixture data, not production.
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("hash fixture password: %v", err))
	}
	return h
}

func newSeedStore() *store {
	now := time.Now().UTC()
	s := &store{
		admins: map[string]*adminAccount{},
	}

	s.admins["admin@propertydeal.test"] = &adminAccount{
		ID:                    uuid.NewString(),
		Name:                  "Site Administrator",
		Email:                 "admin@propertydeal.test",
		RoleName:              "super_admin",
		RoleDisplayName:       "Super Admin",
		RoleLevel:             100,
		AdditionalPermissions: []string{"exports", "settings"},
		PasswordHash:          hashPassword("Sup3rSecret!Admin"),
		MFARequired:           true,
	}
	s.admins["mod@propertydeal.test"] = &adminAccount{
		ID:              uuid.NewString(),
		Name:            "Listing Moderator",
		Email:           "mod@propertydeal.test",
		RoleName:        "moderator",
		RoleDisplayName: "Moderator",
		RoleLevel:       40,
		PasswordHash:    hashPassword("M0derator!Pass12"),
		MFARequired:     true,
	}
	s.admins["fresh@propertydeal.test"] = &adminAccount{
		ID:                 uuid.NewString(),
		Name:               "New Hire",
		Email:              "fresh@propertydeal.test",
		RoleName:           "support",
		RoleDisplayName:    "Support",
		RoleLevel:          10,
		PasswordHash:       hashPassword("Temp0rary!Pass99"),
		MustChangePassword: true,
	}

	s.users = []*user{
		{ID: uuid.NewString(), Name: "Mina Farouk", Email: "mina@example.com", Phone: "+20100000001", UserType: "owner", CreatedAt: now.Add(-72 * time.Hour)},
		{ID: uuid.NewString(), Name: "Omar Khalil", Email: "omar@example.com", Phone: "+20100000002", UserType: "broker", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: uuid.NewString(), Name: "Sara Adel", Email: "sara@example.com", UserType: "client", Blocked: true, CreatedAt: now.Add(-24 * time.Hour)},
	}
	s.properties = []*property{
		{ID: uuid.NewString(), Title: "Garden duplex in Maadi", OwnerName: "Mina Farouk", City: "Cairo", Price: 3_500_000, Status: "pending", CreatedAt: now.Add(-30 * time.Hour)},
		{ID: uuid.NewString(), Title: "Sea-view studio", OwnerName: "Omar Khalil", City: "Alexandria", Price: 1_200_000, Status: "approved", CreatedAt: now.Add(-90 * time.Hour)},
	}
	s.categories = []*category{
		{ID: uuid.NewString(), Name: "Residential"},
		{ID: uuid.NewString(), Name: "Commercial"},
	}
	s.categories = append(s.categories, &category{
		ID: uuid.NewString(), Name: "Apartments", ParentID: s.categories[0].ID,
	})
	s.propertyTypes = []*propertyType{
		{ID: uuid.NewString(), Name: "Apartment"},
		{ID: uuid.NewString(), Name: "Villa"},
		{ID: uuid.NewString(), Name: "Office"},
	}
	s.leads = []*lead{
		{ID: uuid.NewString(), PropertyID: s.properties[0].ID, ClientName: "Hassan Ali", Phone: "+20100000009", Status: "new", CreatedAt: now.Add(-6 * time.Hour)},
		{ID: uuid.NewString(), PropertyID: s.properties[1].ID, ClientName: "Laila Mostafa", Status: "contacted", CreatedAt: now.Add(-2 * time.Hour)},
	}
	s.reports = []*report{
		{ID: uuid.NewString(), TargetType: "property", TargetID: s.properties[0].ID, Reason: "misleading photos", Status: "open", ReportedBy: "sara@example.com", CreatedAt: now.Add(-10 * time.Hour)},
		{ID: uuid.NewString(), TargetType: "message", TargetID: uuid.NewString(), Reason: "spam", Status: "open", CreatedAt: now.Add(-4 * time.Hour)},
	}
	return s
}
