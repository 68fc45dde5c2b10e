package domain

// ProjectParent is the parent reference carried by subprojects.
type ProjectParent struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Project mirrors the subset of the upstream project resource the gateway
// inspects when shaping the hierarchy.
type Project struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Identifier     string         `json:"identifier"`
	Description    string         `json:"description,omitempty"`
	Parent         *ProjectParent `json:"parent,omitempty"`
	ParentID       int            `json:"parent_id,omitempty"`
	HasSubprojects bool           `json:"has_subprojects"`
}

// ProjectHierarchy partitions a flat project list into top-level projects and
// parent-indexed subproject groups.
type ProjectHierarchy struct {
	MainProjects []Project         `json:"main_projects"`
	Subprojects  map[int][]Project `json:"subprojects"`
	TotalCount   int               `json:"total_count"`
}
