package model

import "time"

// Movie is the aggregate that field records and contributions hang off.
// Movies themselves are created and browsed elsewhere; the contribution
// flow only reads them and requires an ACCEPTED status before any field
// data may be proposed.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – the main title of the movie.
//  Status    – moderation status of the movie itself.
//  CreatedAt – creation timestamp.
type Movie struct {
	ID        uint64     // movies.id
	Title     string     // movies.title
	Status    DataStatus // movies.status
	CreatedAt time.Time  // movies.created_at
}
