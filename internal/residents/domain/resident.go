package residents

import (
	"time"

	"github.com/shopspring/decimal"
)

// IPL status labels shown to residents. The Indonesian labels are part of
// the stored data, not presentation.
const (
	IPLStatusPaid   = "Lunas"
	IPLStatusUnpaid = "Belum Lunas"
)

const (
	GenderMale   = "Laki-laki"
	GenderFemale = "Perempuan"
)

// FamilyMember is one member of a household beyond the registered head.
type FamilyMember struct {
	Name          string `json:"nama"`
	Relationship  string `json:"status"`
	BirthDate     string `json:"tanggal_lahir"`
	Gender        string `json:"jenis_kelamin"`
	Phone         string `json:"no_hp"`
	NIK           string `json:"nik"`
	Occupation    string `json:"pekerjaan"`
	MaritalStatus string `json:"status_perkawinan"`
}

// Resident is one household: the registered head of family plus the
// family members living at the same address. CreatedAt doubles as the
// registration date from which the IPL obligation runs.
type Resident struct {
	ID               string          `json:"id"`
	NIK              string          `json:"nik"`
	FamilyCardNumber string          `json:"nomor_kk"`
	Name             string          `json:"nama"`
	HeadPhone        string          `json:"no_hp_kepala"`
	MemberCount      int             `json:"jumlah_anggota"`
	FamilyMembers    []FamilyMember  `json:"anggota_keluarga"`
	Gender           string          `json:"jenis_kelamin"`
	BirthDate        time.Time       `json:"tanggal_lahir"`
	Address          string          `json:"alamat"`
	HouseNumber      string          `json:"nomor_rumah"`
	Block            string          `json:"blok_rumah"`
	RT               string          `json:"rt"`
	RW               string          `json:"rw"`
	OwnershipStatus  string          `json:"status_kepemilikan_rumah"`
	IPLAmount        decimal.Decimal `json:"nominal_ipl"`
	IPLStatus        string          `json:"status_ipl"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Validate checks the fields a household record cannot exist without.
func (r *Resident) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.NIK == "" {
		return ErrEmptyNIK
	}
	if r.FamilyCardNumber == "" {
		return ErrEmptyFamilyCard
	}
	return nil
}

// Age returns whole years at the given reference time.
func (r *Resident) Age(at time.Time) int {
	if r.BirthDate.IsZero() {
		return 0
	}
	age := at.Year() - r.BirthDate.Year()
	if at.Month() < r.BirthDate.Month() ||
		(at.Month() == r.BirthDate.Month() && at.Day() < r.BirthDate.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
