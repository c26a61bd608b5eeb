package seed

import (
	"strings"

	"github.com/angelmondragon/medfinder-backend/pkg/enums"
)

type userSeed struct {
	Email    string
	Password string
	FullName string
	Role     enums.UserRole
}

type pharmacySeed struct {
	Name      string
	Latitude  float64
	Longitude float64
}

type medicineSeed struct {
	Name             string
	Category         string
	ActiveIngredient string
	TrendingScore    int
}

var defaultUsers = []userSeed{
	{Email: "admin@mf.local", Password: "Admin123!", FullName: "Medicine Finder Admin", Role: enums.UserRoleAdmin},
	{Email: "user@mf.local", Password: "User123!", FullName: "Medicine Finder User", Role: enums.UserRoleUser},
}

var defaultPharmacies = []pharmacySeed{
	{Name: "City Care Pharmacy", Latitude: 30.0444, Longitude: 31.2357},
	{Name: "Green Cross Pharmacy", Latitude: 29.9792, Longitude: 31.1342},
	{Name: "HealthFirst Pharmacy", Latitude: 30.0131, Longitude: 31.2089},
}

var defaultMedicines = []medicineSeed{
	{"PainRelief Plus", "Pain Relief", "Ibuprofen", 95},
	{"Allergy Shield", "Allergy", "Loratadine", 90},
	{"ColdAway", "Cold & Flu", "Paracetamol", 88},
	{"HeartSafe", "Cardio", "Aspirin", 80},
	{"GastroEase", "Digestive", "Omeprazole", 78},
	{"SleepWell", "Sleep", "Diphenhydramine", 70},
	{"AntiBac", "Antibiotic", "Amoxicillin", 85},
	{"CalmMind", "Anxiety", "Sertraline", 72},
	{"AsthmaCare", "Respiratory", "Salbutamol", 76},
	{"Diabeto", "Diabetes", "Metformin", 92},
	{"SkinClear", "Dermatology", "Benzoyl Peroxide", 69},
	{"MuscleFlex", "Pain Relief", "Diclofenac", 74},
	{"AllerFree", "Allergy", "Cetirizine", 86},
	{"FluGuard", "Cold & Flu", "Phenylephrine", 67},
	{"BloodFlow", "Cardio", "Clopidogrel", 66},
	{"StomachCalm", "Digestive", "Famotidine", 71},
	{"RestEasy", "Sleep", "Melatonin", 83},
	{"InfectoStop", "Antibiotic", "Azithromycin", 79},
	{"CalmFocus", "Anxiety", "Escitalopram", 65},
	{"BreathEZ", "Respiratory", "Budesonide", 73},
}

// stockGridModulus bounds the generated quantities to 0..11.
const stockGridModulus = 12

func tagFor(value string) string {
	return strings.ToLower(strings.ReplaceAll(value, " ", ""))
}
