package seed

// File is the top-level structure of a seed collection file.
//
//	users:
//	  - userId: demo
//	    content:
//	      movies:
//	        planned:
//	          - id: tt1160419
//	            title: Dune
//	            year: "2021"
type File struct {
	Users []User `yaml:"users"`
}

// User lists the items to ensure for one user, keyed by category then list.
type User struct {
	UserID  string                                         `yaml:"userId"`
	Content map[string]map[string][]map[string]interface{} `yaml:"content"`
}
