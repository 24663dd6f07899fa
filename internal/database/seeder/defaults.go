package seeder

func Defaults() []Seeder {
	return []Seeder{
		RecruiterSeeder{},
		JobSeeder{},
		CandidateSeeder{},
		AssessmentSeeder{},
	}
}
