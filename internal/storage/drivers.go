package storage

// SQL drivers registered for the supported providers.
import (
	_ "github.com/lib/pq"           // postgres
	_ "github.com/mattn/go-sqlite3" // sqlite
)
