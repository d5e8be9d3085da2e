package domain

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleNavigator Role = "navigator"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleNavigator
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UID  string
	Role Role
	Name string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanModify reports whether the actor may change a record owned by ownerID.
func (a Actor) CanModify(ownerID string) bool {
	return a.IsAdmin() || (a.UID != "" && a.UID == ownerID)
}

type User struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Actor() Actor {
	return Actor{UID: u.UID, Role: u.Role, Name: u.Name}
}
