// Package service contains the application use cases for collections and
// cards. Services check that the caller owns the collection they touch and
// persist through the store interfaces, never a concrete database.
//
// Review sessions (due selection and rating submission) live in the
// card_review subpackage; token validation lives in auth.
//
// Errors are domain and store sentinels wrapped with context, plus
// ErrNotOwned for ownership failures; the api package maps them to HTTP.
package service
