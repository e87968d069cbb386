// Package testdb provides database fixtures for tests.
//
// SQLite databases are created per test in t.TempDir() with the real
// migrations applied, so store and service tests run without any external
// service. PostgreSQL fixtures connect to DATABASE_URL and skip the test when
// it is not set.
//
// Basic usage:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.OpenSQLite(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        cards := sqlite.NewCardStore(tx, nil)
//	        // changes are rolled back when fn returns
//	    })
//	}
package testdb
