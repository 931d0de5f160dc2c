// Package i18n holds the Spanish/English catalog for user-visible strings.
// Spanish is the default; unknown keys fall through untranslated so a missing
// entry is visible instead of silent.
package i18n

type Lang string

const (
	ES Lang = "es"
	EN Lang = "en"
)

var catalog = map[string]map[Lang]string{
	"memberships.load_error": {
		ES: "Error al cargar las membresías",
		EN: "Error loading memberships",
	},
	"memberships.empty": {
		ES: "No se encontraron membresías con los filtros aplicados.",
		EN: "No memberships found with the applied filters.",
	},
	"payments.load_error": {
		ES: "Error al cargar los pagos",
		EN: "Error loading payments",
	},
	"payments.update_error": {
		ES: "Error al actualizar el pago",
		EN: "Error updating payment",
	},
	"payments.empty": {
		ES: "No se encontraron pagos con los filtros aplicados.",
		EN: "No payments found with the applied filters.",
	},
	"users.create_error": {
		ES: "Error al crear el usuario",
		EN: "Error creating user",
	},
	"users.gym_missing": {
		ES: "Error: No se encontró información del gimnasio",
		EN: "Error: Gym information not found",
	},
	"workouts.create_error": {
		ES: "Error al crear el entrenamiento",
		EN: "Error creating workout",
	},
	"workouts.update_error": {
		ES: "Error al actualizar el entrenamiento",
		EN: "Error updating workout",
	},
	"workouts.server_error": {
		ES: "Error al conectar con el servidor",
		EN: "Error connecting to server",
	},
	"status.membership.active": {
		ES: "Activa",
		EN: "Active",
	},
	"status.membership.pending_payment": {
		ES: "Pendiente Pago",
		EN: "Pending Payment",
	},
	"status.membership.expired": {
		ES: "Vencida",
		EN: "Expired",
	},
	"status.membership.inactive": {
		ES: "Inactiva",
		EN: "Inactive",
	},
	"status.membership.cancelled": {
		ES: "Cancelada",
		EN: "Cancelled",
	},
	"status.payment.approved": {
		ES: "Aprobado",
		EN: "Approved",
	},
	"status.payment.pending": {
		ES: "Pendiente",
		EN: "Pending",
	},
	"status.payment.rejected": {
		ES: "Rechazado",
		EN: "Rejected",
	},
	"status.payment.cancelled": {
		ES: "Cancelado",
		EN: "Cancelled",
	},
	"error.unexpected": {
		ES: "Ocurrió un error inesperado",
		EN: "An unexpected error occurred",
	},
}

// T returns the catalog entry for key in lang, or the key itself when absent.
func T(lang Lang, key string) string {
	entry, ok := catalog[key]
	if !ok {
		return key
	}
	if msg, ok := entry[lang]; ok {
		return msg
	}
	return entry[ES]
}

// Parse normalizes a stored language preference.
func Parse(s string) Lang {
	if s == string(EN) {
		return EN
	}
	return ES
}
