// Package models defines the core documents stored by the service:
// users, blood-pressure records and impedance/pressure samples.
package models

// User represents a registered application user.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"_id" bson:"_id"`
	// Username is the login name chosen by the user.
	Username string `json:"username" bson:"username"`
	// Password is compared verbatim on login.
	Password string `json:"password" bson:"password"`
	// FirstName of the user.
	FirstName string `json:"firstName" bson:"firstName"`
	// LastName of the user.
	LastName string `json:"lastName" bson:"lastName"`
	// Emails holds every e-mail address of the user.
	Emails []string `json:"emails" bson:"emails"`
	// Phones holds every phone number of the user.
	Phones []string `json:"phones" bson:"phones"`
	// PCP lists primary-care-provider identifiers.
	PCP []string `json:"pcp" bson:"pcp"`
}

// UserPatch carries the fields of an update request. Nil fields are left
// untouched on the stored document.
type UserPatch struct {
	Username  *string   `json:"username,omitempty"`
	Password  *string   `json:"password,omitempty"`
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Emails    *[]string `json:"emails,omitempty"`
	Phones    *[]string `json:"phones,omitempty"`
	PCP       *[]string `json:"pcp,omitempty"`
}

// Apply copies every non-nil field of p onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Emails != nil {
		u.Emails = *p.Emails
	}
	if p.Phones != nil {
		u.Phones = *p.Phones
	}
	if p.PCP != nil {
		u.PCP = *p.PCP
	}
}
