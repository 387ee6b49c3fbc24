// Package shareset builds the profile snapshot a candidate attaches to an application.
package shareset

import (
	"fmt"

	"go-recruiting-platform/internal/domain"

	"github.com/tiendc/go-deepcopy"
)

// Project copies the selected, non-empty sections of profile into a new
// ShareSet. Unselected or empty sections are left unset so they are omitted
// when the application is stored. The profile is never modified.
func Project(profile *domain.CandidateProfile, selection domain.ShareSelection) (domain.ShareSet, error) {
	var set domain.ShareSet
	if profile == nil {
		return set, nil
	}

	var sections domain.Sections
	if err := deepcopy.Copy(&sections, profile.Sections); err != nil {
		return domain.ShareSet{}, fmt.Errorf("shareset: copy sections: %w", err)
	}

	if selection.Personal && !sections.Personal.IsEmpty() {
		personal := sections.Personal
		set.Personal = &personal
	}
	if selection.Education && len(sections.Education) > 0 {
		set.Education = sections.Education
	}
	if selection.Experience && len(sections.Experience) > 0 {
		set.Experience = sections.Experience
	}
	if selection.Projects && len(sections.Projects) > 0 {
		set.Projects = sections.Projects
	}
	if selection.Skills && len(sections.Skills) > 0 {
		set.Skills = sections.Skills
	}
	return set, nil
}

// Empty reports whether nothing would be shared.
func Empty(set domain.ShareSet) bool {
	return set.Personal == nil && len(set.Education) == 0 && len(set.Experience) == 0 &&
		len(set.Projects) == 0 && len(set.Skills) == 0
}
