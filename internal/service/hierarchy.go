package service

import "github.com/spec-kit/helpdesk-gateway/internal/domain"

// ShapeProjects partitions a flat upstream project list into top-level
// projects and parent-indexed subproject groups. Pure and total: upstream
// ordering is preserved within the main list and within each group.
func ShapeProjects(projects []domain.Project) domain.ProjectHierarchy {
	hierarchy := domain.ProjectHierarchy{
		MainProjects: make([]domain.Project, 0, len(projects)),
		Subprojects:  make(map[int][]domain.Project),
		TotalCount:   len(projects),
	}

	for _, project := range projects {
		if project.Parent != nil {
			sub := project
			sub.ParentID = project.Parent.ID
			hierarchy.Subprojects[project.Parent.ID] = append(hierarchy.Subprojects[project.Parent.ID], sub)
			continue
		}
		main := project
		main.HasSubprojects = false
		hierarchy.MainProjects = append(hierarchy.MainProjects, main)
	}

	for i := range hierarchy.MainProjects {
		if _, ok := hierarchy.Subprojects[hierarchy.MainProjects[i].ID]; ok {
			hierarchy.MainProjects[i].HasSubprojects = true
		}
	}

	return hierarchy
}
