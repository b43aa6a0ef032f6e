package dashboard

// ダッシュボードの集計結果。行はすべてSQLから直接スキャンする。

type Overview struct {
	TotalRegistrations  int64   `json:"total_registrations"`
	TodayRegistrations  int64   `json:"today_registrations"`
	EmployeesWithEvents int64   `json:"employees_with_events"`
	AreasWithEvents     int64   `json:"areas_with_events"`
	DailyAverage        float64 `json:"daily_average"`
	ActiveEmployees     int64   `json:"active_employees"`
	PresenceRate        float64 `json:"presence_rate"` // 当日出面率 = 当日出現従業員 / 有効従業員
}

type AreaBreakdownRow struct {
	AreaID    uint    `json:"area_id"`
	AreaName  string  `json:"area_name"`
	Total     int64   `json:"total"`
	Employees int64   `json:"employees"`
	Share     float64 `json:"share"` // 全体に対する割合（0-1）
}

type DailyTrendRow struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Total int64  `json:"total"`
}

type RankingRow struct {
	EmployeeID   uint   `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	AreaName     string `json:"area_name"`
	Total        int64  `json:"total"`
}

type HourlyRow struct {
	Hour  int   `json:"hour"` // 0-23
	Total int64 `json:"total"`
}

type Report struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	Overview Overview           `json:"overview"`
	ByArea   []AreaBreakdownRow `json:"by_area"`
	Daily    []DailyTrendRow    `json:"daily"`
	Ranking  []RankingRow       `json:"ranking"`
	Hourly   []HourlyRow        `json:"hourly"`
}
