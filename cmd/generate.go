package main

//go:generate echo "Generating SQLC files..."
//go:generate bash -c "export PATH=$$PATH:~/go/bin && sqlc generate -f ../storage/sqlc.yaml"
//go:generate echo "SQLC files generated"

// The storage/db package is generated from storage/queries by sqlc. Run
//
// go generate ./...
//
// from the project root directory after editing a query or migration.
