package common

// Column names of the user table, in row order. Every transport writes
// them as its header row.
const (
	ColumnUsername = "username"
	ColumnName     = "nombre"
	ColumnSurname  = "apellido"
	ColumnEmail    = "email"
	ColumnPassword = "password"
	ColumnRole     = "rol"
)

// Header is the header row shared by all transports.
var Header = []string{ColumnUsername, ColumnName, ColumnSurname, ColumnEmail, ColumnPassword, ColumnRole}

// BootstrapUsername is the distinguished identity that can never be deleted
// and that the emergency bypass logs in as.
const BootstrapUsername = "admin"
