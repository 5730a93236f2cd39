// Package all enables every built-in storage backend. Import it for side
// effects from the binary's wiring layer:
//
//	import _ "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/all"
//
// after which storage.New accepts "memory", "sqlite", "postgres" and "mssql".
package all

import (
	_ "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/memory"
	_ "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/mssql"
	_ "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/postgres"
	_ "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/sqlite"
)
