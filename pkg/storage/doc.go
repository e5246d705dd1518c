// Package storage persists subscriber records.
//
// # Record Format
//
// Every record is one line of four fields joined by "|":
//
//	name|phoneNumber|planName|dataUsed
//
// There is no header and no escaping. A field containing "|" corrupts its row;
// on the next load that row no longer splits into four fields and is dropped.
// Line breaks never reach the file: subscribers.New rejects them in names and
// phone numbers with subscribers.ErrInvalidField.
// Lines with an unparseable dataUsed are dropped the same way. Plan names are
// resolved through the plan catalog, and unknown names silently become the
// catalog's default plan.
//
// # Backends
//
// All backends implement RecordStore and replace their entire content on Save:
//
//	file      flat text file (default, users.txt), written via temp file + rename
//	sqlite    subscribers table in a SQLite database (github.com/mattn/go-sqlite3)
//	postgres  same table in PostgreSQL (github.com/lib/pq)
//	redis     encoded lines in one Redis list (github.com/go-redis/redis/v8)
//	s3        the record file as a single object (aws-sdk-go-v2)
//
// # Usage Example
//
//	store, err := storage.New(ctx, storage.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	subs, err := store.Load(ctx, plans.DefaultCatalog())
//
// # Related Packages
//
//   - pkg/records: Holds the in-memory set and saves after every change
//   - pkg/config: Builds Config from environment variables
package storage
