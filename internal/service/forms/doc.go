// Package forms implements the form submission pipeline: newsletter
// signups, investor applications, and career applications.
//
// The service layer orchestrates Validator → Repository → Notifier and
// returns a uniform result envelope. It depends on repository interfaces
// defined in this package and should never import from api/.
//
// Repository implementations live in repository/postgres/.
package forms
