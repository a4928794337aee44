package repository

import "github.com/okian/reten/internal/domain/model"

// seedEmployees is the dataset loaded when persistence holds no employee
// entry yet, so a fresh install has folders to show.
func seedEmployees() []model.Employee {
	return []model.Employee{
		{Profile: model.Profile{
			ID: "emp-001", Name: "Claire Fontaine", Department: "Engineering", Title: "Backend Engineer",
			HireYear: 2021, TenureYears: 4, PerformanceRating: 4.1, Compensation: 62000,
		}},
		{Profile: model.Profile{
			ID: "emp-002", Name: "Marc Lefebvre", Department: "Sales", Title: "Account Executive",
			HireYear: 2023, TenureYears: 1.5, PerformanceRating: 2.8, Compensation: 43000,
		}},
		{Profile: model.Profile{
			ID: "emp-003", Name: "Sofia Mancini", Department: "Engineering", Title: "Data Engineer",
			HireYear: 2023, TenureYears: 1.8, PerformanceRating: 3.6, Compensation: 56000,
		}},
		{Profile: model.Profile{
			ID: "emp-004", Name: "Yusuf Kaya", Department: "Support", Title: "Support Lead",
			HireYear: 2018, TenureYears: 7, PerformanceRating: 4.5, Compensation: 51000,
		}},
		{Profile: model.Profile{
			ID: "emp-005", Name: "Ingrid Svensson", Department: "People", Title: "HR Generalist",
			HireYear: 2021, TenureYears: 3.9, PerformanceRating: 3.2, Compensation: 47000,
		}},
		{Profile: model.Profile{
			ID: "emp-006", Name: "Thomas Okafor", Department: "Finance", Title: "Financial Analyst",
			HireYear: 2024, TenureYears: 0.8, PerformanceRating: 3.9, Compensation: 49000,
		}},
	}
}
