// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProfileFields is the allow-list of profile fields retained after scraping,
// in the order they are written to the profile file.
var ProfileFields = []string{
	"firstName",
	"headline",
	"summary",
	"experience",
	"industryName",
	"education",
	"skills",
	"languages",
	"honors",
	"projects",
	"publications",
	"certifications",
	"volunteer",
}

// Date is a LinkedIn partial date. Month or Day is zero when not given.
type Date struct {
	Year  int `json:"year,omitempty" yaml:"year,omitempty"`
	Month int `json:"month,omitempty" yaml:"month,omitempty"`
	Day   int `json:"day,omitempty" yaml:"day,omitempty"`
}

// TimePeriod bounds a position, degree, project or volunteer role.
// A nil EndDate means the entry is current.
type TimePeriod struct {
	StartDate *Date `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate   *Date `json:"endDate,omitempty" yaml:"endDate,omitempty"`
}

// Experience is one position from the profile's experience section.
type Experience struct {
	Title        string      `json:"title" yaml:"title"`
	CompanyName  string      `json:"companyName" yaml:"companyName"`
	LocationName string      `json:"locationName,omitempty" yaml:"locationName,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	TimePeriod   *TimePeriod `json:"timePeriod,omitempty" yaml:"timePeriod,omitempty"`
}

// Education is one school entry.
type Education struct {
	SchoolName   string      `json:"schoolName" yaml:"schoolName"`
	DegreeName   string      `json:"degreeName,omitempty" yaml:"degreeName,omitempty"`
	FieldOfStudy string      `json:"fieldOfStudy,omitempty" yaml:"fieldOfStudy,omitempty"`
	Activities   string      `json:"activities,omitempty" yaml:"activities,omitempty"`
	TimePeriod   *TimePeriod `json:"timePeriod,omitempty" yaml:"timePeriod,omitempty"`
}

type Skill struct {
	Name string `json:"name" yaml:"name"`
}

type Language struct {
	Name        string `json:"name" yaml:"name"`
	Proficiency string `json:"proficiency,omitempty" yaml:"proficiency,omitempty"`
}

type Honor struct {
	Title       string `json:"title" yaml:"title"`
	Issuer      string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	IssueDate   *Date  `json:"issueDate,omitempty" yaml:"issueDate,omitempty"`
}

type Project struct {
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string      `json:"url,omitempty" yaml:"url,omitempty"`
	TimePeriod  *TimePeriod `json:"timePeriod,omitempty" yaml:"timePeriod,omitempty"`
}

type Publication struct {
	Name        string `json:"name" yaml:"name"`
	Publisher   string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Date        *Date  `json:"date,omitempty" yaml:"date,omitempty"`
}

type Certification struct {
	Name          string      `json:"name" yaml:"name"`
	Authority     string      `json:"authority,omitempty" yaml:"authority,omitempty"`
	LicenseNumber string      `json:"licenseNumber,omitempty" yaml:"licenseNumber,omitempty"`
	URL           string      `json:"url,omitempty" yaml:"url,omitempty"`
	TimePeriod    *TimePeriod `json:"timePeriod,omitempty" yaml:"timePeriod,omitempty"`
}

type Volunteer struct {
	Role        string      `json:"role" yaml:"role"`
	CompanyName string      `json:"companyName,omitempty" yaml:"companyName,omitempty"`
	Cause       string      `json:"cause,omitempty" yaml:"cause,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	TimePeriod  *TimePeriod `json:"timePeriod,omitempty" yaml:"timePeriod,omitempty"`
}

// Profile holds the retained fields of a scraped LinkedIn profile. It is the
// output of the extraction stage and the input of the text stage. Field names
// on disk follow LinkedIn's camelCase keys.
type Profile struct {
	FirstName      string          `json:"firstName" yaml:"firstName"`
	Headline       string          `json:"headline" yaml:"headline"`
	Summary        string          `json:"summary" yaml:"summary"`
	Experience     []Experience    `json:"experience" yaml:"experience"`
	IndustryName   string          `json:"industryName" yaml:"industryName"`
	Education      []Education     `json:"education" yaml:"education"`
	Skills         []Skill         `json:"skills" yaml:"skills"`
	Languages      []Language      `json:"languages" yaml:"languages"`
	Honors         []Honor         `json:"honors" yaml:"honors"`
	Projects       []Project       `json:"projects" yaml:"projects"`
	Publications   []Publication   `json:"publications" yaml:"publications"`
	Certifications []Certification `json:"certifications" yaml:"certifications"`
	Volunteer      []Volunteer     `json:"volunteer" yaml:"volunteer"`
}
