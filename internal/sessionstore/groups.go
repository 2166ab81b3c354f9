package sessionstore

// CreateGroup registers name with no members if it doesn't already
// exist. A pre-existing group is left untouched: creation is idempotent.
func (s *Store) CreateGroup(name string) error {
	members, err := s.GroupMembers(name)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return nil
	}
	_, err = s.db.Exec(`INSERT OR IGNORE INTO groups (name, member) VALUES (?, '')`, name)
	return err
}

// AddGroupMember adds agentName to the named group, creating the group
// implicitly if it doesn't exist.
func (s *Store) AddGroupMember(name, agentName string) error {
	if _, err := s.db.Exec(`DELETE FROM groups WHERE name = ? AND member = ''`, name); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO groups (name, member) VALUES (?, ?)`, name, agentName)
	return err
}

// RemoveGroupMember removes agentName from the named group.
func (s *Store) RemoveGroupMember(name, agentName string) error {
	_, err := s.db.Exec(`DELETE FROM groups WHERE name = ? AND member = ?`, name, agentName)
	return err
}

// GroupMembers returns the members of the named group, empty if the
// group doesn't exist or has no members yet.
func (s *Store) GroupMembers(name string) ([]string, error) {
	rows, err := s.db.Query(`SELECT member FROM groups WHERE name = ? AND member != ''`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListGroups returns every distinct group name, including empty ones.
func (s *Store) ListGroups() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT name FROM groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
